package rfb

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// CaptureReader reads a captured session stream: a recording of the
// server-to-client half of an RFB connection taken just after the
// handshake. The header carries the negotiated pixel format, the
// framebuffer geometry and the desktop name; the body is the raw
// message stream in length-prefixed chunks. A CaptureReader can be
// handed directly to NewSession to replay the recording through the
// decode pipeline without a live server.
type CaptureReader struct {
	file        *os.File
	br          *bufio.Reader
	pixelFormat PixelFormat
	width       uint16
	height      uint16
	desktopName []byte

	// remaining counts the bytes left in the current chunk. Chunk
	// bodies are never allocated whole; reads stream through br into
	// the caller's buffer.
	remaining int
}

// OpenCapture opens a capture file and reads its header.
func OpenCapture(filename string) (*CaptureReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("capture: failed to open file: %w", err)
	}

	r := &CaptureReader{file: file, br: bufio.NewReader(file)}
	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *CaptureReader) readHeader() error {
	if err := r.pixelFormat.Read(r.br); err != nil {
		return fmt.Errorf("capture: failed to read pixel format: %w", err)
	}
	if err := binary.Read(r.br, binary.BigEndian, &r.width); err != nil {
		return fmt.Errorf("capture: failed to read width: %w", err)
	}
	if err := binary.Read(r.br, binary.BigEndian, &r.height); err != nil {
		return fmt.Errorf("capture: failed to read height: %w", err)
	}
	var nameLen uint32
	if err := binary.Read(r.br, binary.BigEndian, &nameLen); err != nil {
		return fmt.Errorf("capture: failed to read name length: %w", err)
	}
	r.desktopName = make([]byte, nameLen)
	if _, err := io.ReadFull(r.br, r.desktopName); err != nil {
		return fmt.Errorf("capture: failed to read desktop name: %w", err)
	}
	return nil
}

// Read implements the io.Reader interface, yielding the recorded
// message stream with the chunk framing stripped. A read never crosses
// a chunk boundary, but callers see one continuous stream.
func (r *CaptureReader) Read(p []byte) (int, error) {
	for r.remaining == 0 {
		var chunkSize uint32
		if err := binary.Read(r.br, binary.BigEndian, &chunkSize); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("capture: failed to read chunk size: %w", err)
		}
		r.remaining = int(chunkSize)
	}

	if len(p) > r.remaining {
		p = p[:r.remaining]
	}
	n, err := r.br.Read(p)
	r.remaining -= n
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return n, fmt.Errorf("capture: truncated chunk with %d bytes left: %w", r.remaining, err)
	}
	return n, nil
}

// Close closes the underlying file.
func (r *CaptureReader) Close() error {
	return r.file.Close()
}

// PixelFormat returns the pixel format from the capture header.
func (r *CaptureReader) PixelFormat() PixelFormat {
	return r.pixelFormat
}

// Width returns the framebuffer width from the capture header.
func (r *CaptureReader) Width() uint16 {
	return r.width
}

// Height returns the framebuffer height from the capture header.
func (r *CaptureReader) Height() uint16 {
	return r.height
}

// DesktopName returns the desktop name from the capture header.
func (r *CaptureReader) DesktopName() []byte {
	return r.desktopName
}

// CaptureWriter records a server-to-client message stream in the
// format CaptureReader reads back.
type CaptureWriter struct {
	w io.Writer
}

// NewCaptureWriter writes a capture header for the given session
// parameters and returns a writer for the message stream.
func NewCaptureWriter(w io.Writer, pf PixelFormat, width, height uint16, desktopName []byte) (*CaptureWriter, error) {
	hdr, err := pf.Marshal()
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if _, err := w.Write(hdr); err != nil {
		return nil, fmt.Errorf("capture: failed to write pixel format: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, width); err != nil {
		return nil, fmt.Errorf("capture: failed to write width: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, height); err != nil {
		return nil, fmt.Errorf("capture: failed to write height: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(desktopName))); err != nil {
		return nil, fmt.Errorf("capture: failed to write name length: %w", err)
	}
	if _, err := w.Write(desktopName); err != nil {
		return nil, fmt.Errorf("capture: failed to write desktop name: %w", err)
	}
	return &CaptureWriter{w: w}, nil
}

// WriteChunk appends one chunk of the recorded message stream. Chunk
// boundaries need not align with message boundaries.
func (cw *CaptureWriter) WriteChunk(data []byte) error {
	if err := binary.Write(cw.w, binary.BigEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("capture: failed to write chunk size: %w", err)
	}
	if _, err := cw.w.Write(data); err != nil {
		return fmt.Errorf("capture: failed to write chunk data: %w", err)
	}
	return nil
}
