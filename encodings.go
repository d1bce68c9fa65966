package rfb

import "fmt"

// EncodingType identifies a framebuffer encoding on the wire.
// The value is signed; negative values are pseudo-encodings.
//
// See RFC 6143 §7.7.
type EncodingType int32

const (
	EncRaw      EncodingType = 0
	EncCopyRect EncodingType = 1
	EncZRLE     EncodingType = 16
)

// Supported reports whether the client can consume the payload of a
// rectangle carrying this encoding. Any other numeric code is carried
// through as-is but cannot be synchronised past, because its payload
// length is unknown.
func (t EncodingType) Supported() bool {
	switch t {
	case EncRaw, EncCopyRect, EncZRLE:
		return true
	}
	return false
}

// String implements the fmt.Stringer interface.
func (t EncodingType) String() string {
	switch t {
	case EncRaw:
		return "Raw"
	case EncCopyRect:
		return "CopyRect"
	case EncZRLE:
		return "ZRLE"
	}
	return fmt.Sprintf("Unsupported(%d)", int32(t))
}
