package rfb

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// zrleTileSize is the tile stride of the ZRLE grid. Tiles on the right
// and bottom edges of a rectangle are truncated.
const zrleTileSize = 64

// ZrleDecoder decodes ZRLE rectangle payloads into the client's pixel
// layout.
//
// ZRLE uses a single continuous zlib stream for the whole session:
// every rectangle's compressed bytes are a slice of the same deflate
// stream, in wire order. The decoder therefore appends each payload to
// one persistent input buffer and inflates through a single zlib
// reader that is never finalised. Re-creating the reader per rectangle
// appears to work on single-rectangle tests and corrupts every
// rectangle after the first in a real session.
//
// A ZrleDecoder is not safe for concurrent use; each session owns its
// own instance.
type ZrleDecoder struct {
	pf         PixelFormat
	bpp        int
	cpixelSize int

	zin *bytes.Buffer
	zr  io.ReadCloser
}

// NewZrleDecoder creates a decoder for a session negotiated with the
// given pixel format.
func NewZrleDecoder(pf PixelFormat) *ZrleDecoder {
	return &ZrleDecoder{
		pf:         pf,
		bpp:        pf.BytesPerPixel(),
		cpixelSize: pf.CPixelSize(),
		zin:        &bytes.Buffer{},
	}
}

// Reset discards the inflate stream and all buffered input. It is
// required between sessions and must never be called mid-session: the
// server's zlib stream spans the whole session, and dropping it
// mid-stream loses the dictionary state every later rectangle depends
// on.
func (d *ZrleDecoder) Reset() {
	if d.zr != nil {
		d.zr.Close()
		d.zr = nil
	}
	d.zin.Reset()
}

// Decode decodes one ZRLE rectangle payload. The payload must include
// the 4-byte big-endian compressed-length prefix as it appeared on the
// wire. On success the returned buffer holds exactly
// width*height*BytesPerPixel bytes in the client's layout; the caller
// owns it. On FormatError the zlib stream is desynchronised and the
// session must be torn down.
func (d *ZrleDecoder) Decode(payload []byte, width, height int) ([]byte, error) {
	if len(payload) < 4 {
		return nil, &FormatError{Reason: fmt.Sprintf("payload too short for length prefix: %d bytes", len(payload))}
	}
	declared := binary.BigEndian.Uint32(payload[:4])
	if len(payload)-4 < int(declared) {
		return nil, &FormatError{Reason: fmt.Sprintf("declared length %d exceeds payload of %d bytes", declared, len(payload)-4)}
	}

	out := make([]byte, width*height*d.bpp)
	if declared == 0 {
		return out, nil
	}

	d.zin.Write(payload[4 : 4+declared])
	if d.zr == nil {
		zr, err := zlib.NewReader(d.zin)
		if err != nil {
			return nil, &FormatError{Reason: "bad zlib stream", Err: err}
		}
		d.zr = zr
	}

	for ty := 0; ty < height; ty += zrleTileSize {
		th := min(zrleTileSize, height-ty)
		for tx := 0; tx < width; tx += zrleTileSize {
			tw := min(zrleTileSize, width-tx)
			if err := d.decodeTile(out, width, tx, ty, tw, th); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// decodeTile parses one tile from the decompressed stream and writes
// its pixels into out at the tile's position within the rectangle.
func (d *ZrleDecoder) decodeTile(out []byte, width, tx, ty, tw, th int) error {
	subtype, err := d.readByte()
	if err != nil {
		return err
	}

	switch {
	case subtype == 0:
		return d.decodeRawTile(out, width, tx, ty, tw, th)
	case subtype == 1:
		return d.decodeSolidTile(out, width, tx, ty, tw, th)
	case subtype <= 127:
		return d.decodePackedTile(out, width, tx, ty, tw, th, int(subtype))
	case subtype == 128:
		return d.decodeRLETile(out, width, tx, ty, tw, th)
	case subtype == 129:
		return &FormatError{Reason: "reserved subencoding 129"}
	default:
		return d.decodePaletteRLETile(out, width, tx, ty, tw, th, int(subtype)-128)
	}
}

func (d *ZrleDecoder) decodeRawTile(out []byte, width, tx, ty, tw, th int) error {
	body := make([]byte, tw*th*d.cpixelSize)
	if _, err := io.ReadFull(d.zr, body); err != nil {
		return &FormatError{Reason: "truncated raw tile", Err: err}
	}
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			cp := body[(y*tw+x)*d.cpixelSize:]
			d.putCPixel(out, width, tx+x, ty+y, cp[:d.cpixelSize])
		}
	}
	return nil
}

func (d *ZrleDecoder) decodeSolidTile(out []byte, width, tx, ty, tw, th int) error {
	cp, err := d.readCPixel()
	if err != nil {
		return err
	}
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			d.putCPixel(out, width, tx+x, ty+y, cp)
		}
	}
	return nil
}

func (d *ZrleDecoder) decodePackedTile(out []byte, width, tx, ty, tw, th, paletteSize int) error {
	palette, err := d.readPalette(paletteSize)
	if err != nil {
		return err
	}

	bpi := packedBits(paletteSize)
	mask := byte(1<<bpi - 1)
	// Each row is padded to a whole byte; leftover bits never carry
	// into the next row.
	row := make([]byte, (tw*bpi+7)/8)
	for y := 0; y < th; y++ {
		if _, err := io.ReadFull(d.zr, row); err != nil {
			return &FormatError{Reason: "truncated packed palette tile", Err: err}
		}
		for x := 0; x < tw; x++ {
			bit := x * bpi
			idx := row[bit/8] >> (8 - bpi - bit%8) & mask
			if int(idx) >= paletteSize {
				return &FormatError{Reason: fmt.Sprintf("packed index %d out of range for palette of %d", idx, paletteSize)}
			}
			d.putCPixel(out, width, tx+x, ty+y, palette[idx])
		}
	}
	return nil
}

func (d *ZrleDecoder) decodeRLETile(out []byte, width, tx, ty, tw, th int) error {
	total := tw * th
	for pos := 0; pos < total; {
		cp, err := d.readCPixel()
		if err != nil {
			return err
		}
		run, err := d.readRunLength()
		if err != nil {
			return err
		}
		if pos+run > total {
			return &FormatError{Reason: fmt.Sprintf("run of %d overflows tile at pixel %d of %d", run, pos, total)}
		}
		for ; run > 0; run-- {
			d.putCPixel(out, width, tx+pos%tw, ty+pos/tw, cp)
			pos++
		}
	}
	return nil
}

func (d *ZrleDecoder) decodePaletteRLETile(out []byte, width, tx, ty, tw, th, paletteSize int) error {
	palette, err := d.readPalette(paletteSize)
	if err != nil {
		return err
	}

	total := tw * th
	for pos := 0; pos < total; {
		b, err := d.readByte()
		if err != nil {
			return err
		}
		idx := int(b & 0x7F)
		if idx >= paletteSize {
			return &FormatError{Reason: fmt.Sprintf("palette index %d out of range for palette of %d", idx, paletteSize)}
		}
		run := 1
		if b&0x80 != 0 {
			if run, err = d.readRunLength(); err != nil {
				return err
			}
		}
		if pos+run > total {
			return &FormatError{Reason: fmt.Sprintf("run of %d overflows tile at pixel %d of %d", run, pos, total)}
		}
		for ; run > 0; run-- {
			d.putCPixel(out, width, tx+pos%tw, ty+pos/tw, palette[idx])
			pos++
		}
	}
	return nil
}

// packedBits returns the index width of a packed palette tile.
func packedBits(paletteSize int) int {
	switch {
	case paletteSize <= 2:
		return 1
	case paletteSize <= 4:
		return 2
	case paletteSize <= 16:
		return 4
	default:
		return 8
	}
}

func (d *ZrleDecoder) readPalette(size int) ([][]byte, error) {
	body := make([]byte, size*d.cpixelSize)
	if _, err := io.ReadFull(d.zr, body); err != nil {
		return nil, &FormatError{Reason: "truncated palette", Err: err}
	}
	palette := make([][]byte, size)
	for i := range palette {
		palette[i] = body[i*d.cpixelSize : (i+1)*d.cpixelSize]
	}
	return palette, nil
}

// readRunLength reads a variable-length run length: 255 is added for
// every 0xFF byte, the first other byte is added as-is, and the run is
// one longer than the sum.
func (d *ZrleDecoder) readRunLength() (int, error) {
	run := 1
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		run += int(b)
		if b != 0xFF {
			return run, nil
		}
	}
}

func (d *ZrleDecoder) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.zr, b[:]); err != nil {
		return 0, &FormatError{Reason: "truncated tile data", Err: err}
	}
	return b[0], nil
}

func (d *ZrleDecoder) readCPixel() ([]byte, error) {
	cp := make([]byte, d.cpixelSize)
	if _, err := io.ReadFull(d.zr, cp); err != nil {
		return nil, &FormatError{Reason: "truncated cpixel", Err: err}
	}
	return cp, nil
}

// putCPixel widens a compact pixel to a native pixel at (x, y). The
// server never sends alpha; the pad bytes become 0xFF so the client
// surface stays opaque.
func (d *ZrleDecoder) putCPixel(out []byte, width, x, y int, cp []byte) {
	off := (y*width + x) * d.bpp
	if d.pf.BigEndian != 0 {
		pad := d.bpp - d.cpixelSize
		for i := 0; i < pad; i++ {
			out[off+i] = 0xFF
		}
		copy(out[off+pad:], cp)
		return
	}
	copy(out[off:], cp)
	for i := d.cpixelSize; i < d.bpp; i++ {
		out[off+i] = 0xFF
	}
}
