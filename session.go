package rfb

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bigangryrobot/go-rfb/logger"
	"github.com/bigangryrobot/go-rfb/metrics"
)

// ServerMessageType identifies a server-to-client message.
//
// See RFC 6143 §7.6.
type ServerMessageType uint8

const (
	ServerFramebufferUpdate  ServerMessageType = 0
	ServerSetColorMapEntries ServerMessageType = 1
	ServerBell               ServerMessageType = 2
	ServerCutText            ServerMessageType = 3
)

// Update is one fully processed FramebufferUpdate: the rectangles in
// wire order, after conversion.
type Update struct {
	Rectangles []*DecodedRectangle
}

// SessionConfig configures a receive session. The pixel format and
// geometry come from the already completed handshake. After the config
// has been passed to NewSession it must not be modified.
type SessionConfig struct {
	PixelFormat   PixelFormat
	Width, Height uint16

	// Updates receives every processed update. If nil, updates are
	// applied to the canvas and discarded.
	Updates chan<- *Update
}

// Session is the receive side of one RFB connection after the
// handshake: it reads server messages, routes framebuffer updates
// through the decode pipeline and applies them to its canvas.
//
// A session runs on a single goroutine; rectangles are processed
// strictly in wire order because the ZRLE zlib stream is defined in
// that order. Sessions are independent of each other and each owns its
// decoder exclusively.
type Session struct {
	rc     io.Reader
	tr     Transport
	cfg    *SessionConfig
	dec    *ZrleDecoder
	conv   *RectangleConverter
	canvas *Canvas

	metrics map[string]metrics.Metric
}

// NewSession creates a session reading from r, which is typically a
// net.Conn positioned just past the ServerInit message.
func NewSession(r io.Reader, cfg *SessionConfig) (*Session, error) {
	if err := cfg.PixelFormat.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	dec := NewZrleDecoder(cfg.PixelFormat)
	bytesReceived := &metrics.Gauge{}
	return &Session{
		rc:     r,
		tr:     &meteredTransport{tr: NewTransport(r), bytes: bytesReceived},
		cfg:    cfg,
		dec:    dec,
		conv:   NewRectangleConverter(dec),
		canvas: NewCanvas(int(cfg.Width), int(cfg.Height), cfg.PixelFormat),
		metrics: map[string]metrics.Metric{
			"bytes-received":   bytesReceived,
			"updates-received": &metrics.Counter{},
			"rects-decoded":    &metrics.Counter{},
		},
	}, nil
}

// meteredTransport counts the bytes a transport delivers.
type meteredTransport struct {
	tr    Transport
	bytes metrics.Metric
}

func (t *meteredTransport) ReadExact(n int) ([]byte, error) {
	buf, err := t.tr.ReadExact(n)
	t.bytes.Adjust(int64(len(buf)))
	return buf, err
}

// Canvas returns the session's framebuffer surface.
func (s *Session) Canvas() *Canvas { return s.canvas }

// MetricValue returns the current value of a named session metric, or
// zero for an unknown name.
func (s *Session) MetricValue(name string) int64 {
	if m, ok := s.metrics[name]; ok {
		return m.Value()
	}
	return 0
}

// Run reads and processes server messages until the context is
// cancelled or the session fails. The first fatal error tears the
// session down; no partial update is ever delivered. If the underlying
// reader is an io.Closer, cancelling the context closes it to abort a
// blocked read.
func (s *Session) Run(ctx context.Context) error {
	if closer, ok := s.rc.(io.Closer); ok {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-ctx.Done():
				closer.Close()
			case <-stop:
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		buf, err := s.tr.ReadExact(1)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		msgType := ServerMessageType(buf[0])
		logger.Tracef("session: message type %d", msgType)

		switch msgType {
		case ServerFramebufferUpdate:
			if err := s.handleUpdate(ctx); err != nil {
				return err
			}
		case ServerSetColorMapEntries:
			if err := s.skipColorMapEntries(); err != nil {
				return err
			}
		case ServerBell:
			// No payload.
		case ServerCutText:
			if err := s.skipCutText(); err != nil {
				return err
			}
		default:
			return &ProtocolError{Reason: fmt.Sprintf("unsupported server message type %d", msgType)}
		}
	}
}

func (s *Session) handleUpdate(ctx context.Context) error {
	if _, err := s.tr.ReadExact(1); err != nil { // padding
		return err
	}

	update, err := ReadUpdate(s.tr, s.cfg.PixelFormat)
	if err != nil {
		return err
	}

	out := &Update{Rectangles: make([]*DecodedRectangle, 0, len(update.Rectangles))}
	var fatal error
	for _, rect := range update.Rectangles {
		dec := s.conv.Convert(rect)
		if err := s.canvas.Apply(dec); err != nil {
			return fmt.Errorf("session: apply %s: %w", &rect.RectangleHeader, err)
		}
		out.Rectangles = append(out.Rectangles, dec)
		s.metrics["rects-decoded"].Adjust(1)

		switch {
		case !rect.EncType.Supported():
			// The payload length of whatever follows is unknown.
			fatal = &ProtocolError{Reason: fmt.Sprintf("encoding %s: cannot resynchronise", rect.EncType)}
		case rect.EncType == EncZRLE && dec.Encoding == EncZRLE:
			// The converter passed a ZRLE rectangle through, so the
			// decode failed and the zlib stream is desynchronised.
			fatal = &FormatError{Reason: "zlib stream desynchronised"}
		}
	}
	s.metrics["updates-received"].Adjust(1)

	if s.cfg.Updates != nil {
		select {
		case s.cfg.Updates <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fatal
}

// skipColorMapEntries consumes a SetColorMapEntries message. The
// client only supports true-colour formats, so the entries are read
// and dropped to keep the stream synchronised.
func (s *Session) skipColorMapEntries() error {
	buf, err := s.tr.ReadExact(5) // padding + first-color + number-of-colors
	if err != nil {
		return err
	}
	numColors := binary.BigEndian.Uint16(buf[3:5])
	_, err = s.tr.ReadExact(int(numColors) * 6)
	return err
}

// skipCutText consumes a ServerCutText message.
func (s *Session) skipCutText() error {
	buf, err := s.tr.ReadExact(7) // 3 bytes padding + length
	if err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(buf[3:7])
	_, err = s.tr.ReadExact(int(length))
	return err
}
