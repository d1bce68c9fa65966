// Command recorder replays a captured RFB session through the decode
// pipeline and writes the framebuffer to an MJPEG AVI file, one video
// frame per framebuffer update.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"image"
	"image/jpeg"
	"io"
	"log"

	"github.com/icza/mjpeg"
	"golang.org/x/image/draw"

	rfb "github.com/bigangryrobot/go-rfb"
)

func main() {
	var (
		capturePath = flag.String("in", "session.rfbcap", "path to the captured session stream")
		aviPath     = flag.String("out", "session.avi", "path of the AVI file to write")
		fps         = flag.Int("fps", 10, "frames per second of the output video")
		scale       = flag.Int("scale", 100, "output size as a percentage of the framebuffer")
	)
	flag.Parse()

	capture, err := rfb.OpenCapture(*capturePath)
	if err != nil {
		log.Fatalf("opening capture: %v", err)
	}
	defer capture.Close()

	updates := make(chan *rfb.Update)
	session, err := rfb.NewSession(capture, &rfb.SessionConfig{
		PixelFormat: capture.PixelFormat(),
		Width:       capture.Width(),
		Height:      capture.Height(),
		Updates:     updates,
	})
	if err != nil {
		log.Fatalf("creating session: %v", err)
	}

	outW := int(capture.Width()) * *scale / 100
	outH := int(capture.Height()) * *scale / 100
	// AVI frame dimensions must be even.
	outW -= outW % 2
	outH -= outH % 2

	avi, err := mjpeg.New(*aviPath, int32(outW), int32(outH), int32(*fps))
	if err != nil {
		log.Fatalf("creating AVI writer: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
		close(updates)
	}()

	frame := image.NewRGBA(image.Rect(0, 0, outW, outH))
	frames := 0
	for range updates {
		snapshot := session.Canvas().Image()
		draw.ApproxBiLinear.Scale(frame, frame.Bounds(), snapshot, snapshot.Bounds(), draw.Src, nil)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, frame, nil); err != nil {
			log.Fatalf("encoding frame %d: %v", frames, err)
		}
		if err := avi.AddFrame(buf.Bytes()); err != nil {
			log.Fatalf("writing frame %d: %v", frames, err)
		}
		frames++
	}

	if err := <-done; err != nil && !isEndOfCapture(err) {
		log.Printf("session ended with error: %v", err)
	}
	if err := avi.Close(); err != nil {
		log.Fatalf("finalising AVI: %v", err)
	}
	log.Printf("wrote %d frames to %s", frames, *aviPath)
}

// isEndOfCapture reports whether the session stopped because the
// capture stream ran out, which is the normal way a replay ends.
func isEndOfCapture(err error) bool {
	var terr *rfb.TransportError
	return errors.As(err, &terr) && errors.Is(terr, io.EOF)
}
