package rfb

import (
	"github.com/bigangryrobot/go-rfb/logger"
)

// RectangleConverter maps encoded rectangles to decoded ones. Raw,
// CopyRect and unsupported rectangles pass through unchanged; ZRLE is
// routed through the session's decoder.
type RectangleConverter struct {
	zrle *ZrleDecoder
}

// NewRectangleConverter creates a converter. dec may be nil when ZRLE
// was not negotiated; ZRLE rectangles then pass through undecoded with
// a warning.
func NewRectangleConverter(dec *ZrleDecoder) *RectangleConverter {
	return &RectangleConverter{zrle: dec}
}

// Convert resolves one rectangle. It never fails: a decode error is
// demoted to a log line and the original payload is passed through
// with its original encoding tag, keeping the outer stream alive for
// diagnostics. The caller should still treat a failed ZRLE rectangle
// as a teardown signal, because the session's zlib stream is
// desynchronised past it.
func (c *RectangleConverter) Convert(rect *EncodedRectangle) *DecodedRectangle {
	dec := &DecodedRectangle{
		X:        rect.X,
		Y:        rect.Y,
		Width:    rect.Width,
		Height:   rect.Height,
		Encoding: rect.EncType,
		Pixels:   rect.Payload,
	}

	if rect.EncType != EncZRLE {
		return dec
	}

	if c.zrle == nil {
		logger.Warnf("%v: %s", ErrDecoderMissing, &rect.RectangleHeader)
		return dec
	}

	pixels, err := c.zrle.Decode(rect.Payload, int(rect.Width), int(rect.Height))
	if err != nil {
		// Do not recreate the decoder here: the stream is already
		// desynchronised and a fresh inflater cannot resynchronise it.
		logger.Errorf("zrle decode failed for %s: %v", &rect.RectangleHeader, err)
		return dec
	}

	dec.Encoding = EncRaw
	dec.Pixels = pixels
	return dec
}
