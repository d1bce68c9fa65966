package rfb

import (
	"bufio"
	"io"
)

// Transport is the byte-oriented read side of an RFB connection. Reads
// may block until the requested bytes arrive; cancellation happens at
// the session level by closing the underlying connection.
type Transport interface {
	// ReadExact reads exactly n bytes, or fails with a TransportError.
	ReadExact(n int) ([]byte, error)
}

type readerTransport struct {
	br *bufio.Reader
}

// NewTransport wraps an io.Reader in a buffered Transport. The reader
// is typically a net.Conn whose handshake has already completed.
func NewTransport(r io.Reader) Transport {
	return &readerTransport{br: bufio.NewReader(r)}
}

func (t *readerTransport) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.br, buf); err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}
	return buf, nil
}
