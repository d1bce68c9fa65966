package rfb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PixelFormat describes the way a pixel is formatted for an RFB
// connection, as negotiated during the handshake.
//
// See RFC 6143 §7.4.
type PixelFormat struct {
	BPP                             uint8   // bits-per-pixel
	Depth                           uint8   // depth
	BigEndian                       uint8   // big-endian-flag
	TrueColor                       uint8   // true-color-flag
	RedMax, GreenMax, BlueMax       uint16  // red-, green-, blue-max
	RedShift, GreenShift, BlueShift uint8   // red-, green-, blue-shift
	_                               [3]byte // padding
}

const pixelFormatLen = 16

// DefaultPixelFormat is the client's fixed destination layout: 32 bits
// per pixel, depth 24, little-endian true colour. Pixels are stored
// B,G,R,A in memory with alpha forced to 0xFF.
var DefaultPixelFormat = PixelFormat{
	BPP: 32, Depth: 24, BigEndian: 0, TrueColor: 1,
	RedMax: 255, GreenMax: 255, BlueMax: 255,
	RedShift: 16, GreenShift: 8, BlueShift: 0,
}

// BytesPerPixel returns the width of a native pixel in bytes.
func (pf PixelFormat) BytesPerPixel() int {
	return (int(pf.BPP) + 7) / 8
}

// CPixelSize returns the width in bytes of the compact pixel
// representation used inside ZRLE tiles.
func (pf PixelFormat) CPixelSize() int {
	return (int(pf.Depth) + 7) / 8
}

// Validate checks the structural invariants of the format.
func (pf PixelFormat) Validate() error {
	switch pf.BPP {
	case 8, 16, 32:
	default:
		return fmt.Errorf("invalid bits-per-pixel %d; must be 8, 16, or 32", pf.BPP)
	}
	if pf.Depth < 1 || pf.Depth > 32 {
		return fmt.Errorf("invalid depth %d; must be in [1,32]", pf.Depth)
	}
	if pf.Depth > pf.BPP {
		return fmt.Errorf("invalid depth %d; cannot exceed bits-per-pixel %d", pf.Depth, pf.BPP)
	}
	return nil
}

// Read populates the PixelFormat from its 16-byte wire form.
func (pf *PixelFormat) Read(r io.Reader) error {
	buf := make([]byte, pixelFormatLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return pf.Unmarshal(buf)
}

// Unmarshal decodes the 16-byte wire form.
func (pf *PixelFormat) Unmarshal(data []byte) error {
	if len(data) < pixelFormatLen {
		return fmt.Errorf("pixel format too short: %d bytes", len(data))
	}
	pf.BPP = data[0]
	pf.Depth = data[1]
	pf.BigEndian = data[2]
	pf.TrueColor = data[3]
	pf.RedMax = binary.BigEndian.Uint16(data[4:6])
	pf.GreenMax = binary.BigEndian.Uint16(data[6:8])
	pf.BlueMax = binary.BigEndian.Uint16(data[8:10])
	pf.RedShift = data[10]
	pf.GreenShift = data[11]
	pf.BlueShift = data[12]
	return pf.Validate()
}

// Marshal encodes the 16-byte wire form.
func (pf PixelFormat) Marshal() ([]byte, error) {
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, pixelFormatLen)
	buf[0] = pf.BPP
	buf[1] = pf.Depth
	buf[2] = pf.BigEndian
	buf[3] = pf.TrueColor
	binary.BigEndian.PutUint16(buf[4:6], pf.RedMax)
	binary.BigEndian.PutUint16(buf[6:8], pf.GreenMax)
	binary.BigEndian.PutUint16(buf[8:10], pf.BlueMax)
	buf[10] = pf.RedShift
	buf[11] = pf.GreenShift
	buf[12] = pf.BlueShift
	return buf, nil
}

// String implements the fmt.Stringer interface.
func (pf PixelFormat) String() string {
	return fmt.Sprintf("{ bpp: %d depth: %d big-endian: %d true-color: %d red-max: %d green-max: %d blue-max: %d red-shift: %d green-shift: %d blue-shift: %d }",
		pf.BPP, pf.Depth, pf.BigEndian, pf.TrueColor, pf.RedMax, pf.GreenMax, pf.BlueMax, pf.RedShift, pf.GreenShift, pf.BlueShift)
}

func (pf PixelFormat) order() binary.ByteOrder {
	if pf.BigEndian != 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
