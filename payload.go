package rfb

import (
	"encoding/binary"
)

// readRectangle reads one rectangle header and consumes exactly the
// number of payload bytes its encoding dictates.
//
// Payload sizing per RFC 6143 §7.7: Raw carries width*height native
// pixels; CopyRect carries a 4-byte source position; ZRLE carries a
// 4-byte big-endian compressed length followed by that many bytes. An
// unsupported encoding carries an unknown payload length, so nothing
// is consumed and the caller must treat the stream as unreadable from
// here on.
func readRectangle(tr Transport, pf PixelFormat) (*EncodedRectangle, error) {
	hdr, err := readRectangleHeader(tr)
	if err != nil {
		return nil, err
	}

	rect := &EncodedRectangle{RectangleHeader: hdr}

	switch hdr.EncType {
	case EncRaw:
		n := hdr.Area() * pf.BytesPerPixel()
		if n == 0 {
			return rect, nil
		}
		rect.Payload, err = tr.ReadExact(n)
		if err != nil {
			return nil, err
		}

	case EncCopyRect:
		rect.Payload, err = tr.ReadExact(4)
		if err != nil {
			return nil, err
		}

	case EncZRLE:
		prefix, err := tr.ReadExact(4)
		if err != nil {
			return nil, err
		}
		compressedLen := binary.BigEndian.Uint32(prefix)
		if compressedLen == 0 {
			rect.Payload = prefix
			return rect, nil
		}
		data, err := tr.ReadExact(int(compressedLen))
		if err != nil {
			return nil, err
		}
		rect.Payload = append(prefix, data...)

	default:
		// Unknown payload length; leave the payload empty.
	}

	return rect, nil
}
