package rfb

import (
	"encoding/binary"
	"fmt"
)

// RectangleHeader is the fixed 12-byte header preceding every
// rectangle of a FramebufferUpdate message.
//
// See RFC 6143 §7.6.1.
type RectangleHeader struct {
	X, Y          uint16
	Width, Height uint16
	EncType       EncodingType
}

const rectangleHeaderLen = 12

// String returns a string representation.
func (h *RectangleHeader) String() string {
	return fmt.Sprintf("rect x: %d, y: %d, width: %d, height: %d, enc: %s", h.X, h.Y, h.Width, h.Height, h.EncType)
}

// Area returns the total area of the rectangle in pixels.
func (h *RectangleHeader) Area() int { return int(h.Width) * int(h.Height) }

// EncodedRectangle is a rectangle header together with its raw, still
// encoded payload. For ZRLE the payload includes the 4-byte compressed
// length prefix so the decoder can validate the framing.
type EncodedRectangle struct {
	RectangleHeader
	Payload []byte
}

// DecodedRectangle is a rectangle whose payload has been resolved to
// the client's pixel layout. After a successful ZRLE decode the
// encoding tag becomes Raw and Pixels holds
// Width*Height*BytesPerPixel bytes. Rectangles the converter passes
// through keep their original tag and bytes.
type DecodedRectangle struct {
	X, Y          uint16
	Width, Height uint16
	Encoding      EncodingType
	Pixels        []byte
}

func readRectangleHeader(tr Transport) (RectangleHeader, error) {
	var h RectangleHeader
	buf, err := tr.ReadExact(rectangleHeaderLen)
	if err != nil {
		return h, err
	}
	h.X = binary.BigEndian.Uint16(buf[0:2])
	h.Y = binary.BigEndian.Uint16(buf[2:4])
	h.Width = binary.BigEndian.Uint16(buf[4:6])
	h.Height = binary.BigEndian.Uint16(buf[6:8])
	h.EncType = EncodingType(int32(binary.BigEndian.Uint32(buf[8:12])))
	return h, nil
}
