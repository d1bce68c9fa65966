package rfb

import (
	"bytes"
	"testing"
)

func TestConvertRawPassthrough(t *testing.T) {
	conv := NewRectangleConverter(NewZrleDecoder(DefaultPixelFormat))
	payload := []byte{1, 2, 3, 4}

	dec := conv.Convert(&EncodedRectangle{
		RectangleHeader: RectangleHeader{X: 1, Y: 2, Width: 1, Height: 1, EncType: EncRaw},
		Payload:         payload,
	})

	if dec.Encoding != EncRaw {
		t.Errorf("encoding = %s, want Raw", dec.Encoding)
	}
	if !bytes.Equal(dec.Pixels, payload) {
		t.Errorf("pixels = % x, want passthrough", dec.Pixels)
	}
	if dec.X != 1 || dec.Y != 2 || dec.Width != 1 || dec.Height != 1 {
		t.Errorf("geometry not carried through: %+v", dec)
	}
}

func TestConvertCopyRectPassthrough(t *testing.T) {
	conv := NewRectangleConverter(NewZrleDecoder(DefaultPixelFormat))
	payload := []byte{0, 1, 0, 2}

	dec := conv.Convert(&EncodedRectangle{
		RectangleHeader: RectangleHeader{Width: 4, Height: 4, EncType: EncCopyRect},
		Payload:         payload,
	})

	if dec.Encoding != EncCopyRect {
		t.Errorf("encoding = %s, want CopyRect", dec.Encoding)
	}
	if !bytes.Equal(dec.Pixels, payload) {
		t.Errorf("pixels = % x, want passthrough", dec.Pixels)
	}
}

func TestConvertUnsupportedPassthrough(t *testing.T) {
	conv := NewRectangleConverter(NewZrleDecoder(DefaultPixelFormat))

	dec := conv.Convert(&EncodedRectangle{
		RectangleHeader: RectangleHeader{Width: 4, Height: 4, EncType: EncodingType(7)},
	})

	if dec.Encoding != EncodingType(7) {
		t.Errorf("encoding = %s, want Unsupported(7)", dec.Encoding)
	}
	if len(dec.Pixels) != 0 {
		t.Errorf("pixels = % x, want empty", dec.Pixels)
	}
}

func TestConvertZRLE(t *testing.T) {
	conv := NewRectangleConverter(NewZrleDecoder(DefaultPixelFormat))
	s := newZrleStream()

	dec := conv.Convert(&EncodedRectangle{
		RectangleHeader: RectangleHeader{Width: 2, Height: 2, EncType: EncZRLE},
		Payload:         s.payload(t, []byte{0x01, 0xAA, 0xBB, 0xCC}),
	})

	if dec.Encoding != EncRaw {
		t.Errorf("encoding = %s, want Raw after decode", dec.Encoding)
	}
	want := repeatPixel([]byte{0xAA, 0xBB, 0xCC, 0xFF}, 4)
	if !bytes.Equal(dec.Pixels, want) {
		t.Errorf("pixels = % x, want % x", dec.Pixels, want)
	}
}

func TestConvertZRLEDecoderMissing(t *testing.T) {
	conv := NewRectangleConverter(nil)
	payload := []byte{0, 0, 0, 2, 0x78, 0x9C}

	dec := conv.Convert(&EncodedRectangle{
		RectangleHeader: RectangleHeader{Width: 2, Height: 2, EncType: EncZRLE},
		Payload:         payload,
	})

	// Raw ZRLE bytes pass through with their original tag.
	if dec.Encoding != EncZRLE {
		t.Errorf("encoding = %s, want ZRLE", dec.Encoding)
	}
	if !bytes.Equal(dec.Pixels, payload) {
		t.Errorf("pixels = % x, want passthrough", dec.Pixels)
	}
}

func TestConvertZRLEDecodeFailure(t *testing.T) {
	conv := NewRectangleConverter(NewZrleDecoder(DefaultPixelFormat))
	payload := []byte{0, 0, 0, 2, 0xDE, 0xAD} // not a zlib stream

	dec := conv.Convert(&EncodedRectangle{
		RectangleHeader: RectangleHeader{Width: 2, Height: 2, EncType: EncZRLE},
		Payload:         payload,
	})

	if dec.Encoding != EncZRLE {
		t.Errorf("encoding = %s, want original tag on failure", dec.Encoding)
	}
	if !bytes.Equal(dec.Pixels, payload) {
		t.Errorf("pixels = % x, want original payload", dec.Pixels)
	}
}
