/*
Package rfb implements the receive side of the Remote Framebuffer
protocol (RFC 6143): reading FramebufferUpdate server messages and
decoding Raw, CopyRect and ZRLE rectangles into raw pixel buffers
ready for blitting.
https://tools.ietf.org/html/rfc6143
*/
package rfb

import (
	"encoding/binary"
	"fmt"
)

// FramebufferUpdate is the parsed body of a FramebufferUpdate server
// message: the rectangles in wire order, still encoded.
type FramebufferUpdate struct {
	Rectangles []*EncodedRectangle
}

// ReadUpdate reads the body of a FramebufferUpdate message from the
// transport. The caller must already have consumed the 1-byte message
// type and the 1-byte padding. The message is produced whole or not at
// all; on error the connection is no longer usable.
//
// A rectangle with an unsupported encoding has no knowable payload
// length, so it can only be the final rectangle of the message. If
// more rectangles follow one, the stream cannot be resynchronised and
// a ProtocolError is returned.
func ReadUpdate(tr Transport, pf PixelFormat) (*FramebufferUpdate, error) {
	buf, err := tr.ReadExact(2)
	if err != nil {
		return nil, err
	}
	numRects := binary.BigEndian.Uint16(buf)

	update := &FramebufferUpdate{
		Rectangles: make([]*EncodedRectangle, 0, numRects),
	}
	for i := uint16(0); i < numRects; i++ {
		rect, err := readRectangle(tr, pf)
		if err != nil {
			return nil, err
		}
		if !rect.EncType.Supported() && i+1 < numRects {
			return nil, &ProtocolError{
				Reason: fmt.Sprintf("encoding %s in rectangle %d of %d: cannot skip unknown payload", rect.EncType, i+1, numRects),
			}
		}
		update.Rectangles = append(update.Rectangles, rect)
	}
	return update, nil
}
