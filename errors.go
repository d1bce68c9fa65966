package rfb

import (
	"errors"
	"fmt"
)

// TransportError reports a failed or short read from the underlying
// connection. It is fatal to the session.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a malformed or unreadable protocol structure,
// such as a rectangle header the client cannot synchronise past. It is
// fatal to the session.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s", e.Reason)
}

// FormatError reports a structural violation inside a ZRLE payload:
// truncated tile data, an unknown subencoding, a palette index out of
// range, a run overflowing its tile, or a declared-length mismatch.
// Because every ZRLE rectangle shares one zlib stream, a FormatError
// leaves the stream desynchronised and the session must be torn down.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zrle: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("zrle: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ErrDecoderMissing is reported when a ZRLE rectangle arrives but no
// decoder is configured for the session. The converter demotes this to
// a warning and passes the raw payload through.
var ErrDecoderMissing = errors.New("rfb: no zrle decoder configured")
