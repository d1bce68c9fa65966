package rfb

import (
	"image/color"
	"testing"
)

func TestCanvasApplyRaw(t *testing.T) {
	c := NewCanvas(4, 4, DefaultPixelFormat)

	// Two BGRA pixels at (1,1): blue-ish then red-ish.
	err := c.Apply(&DecodedRectangle{
		X: 1, Y: 1, Width: 2, Height: 1,
		Encoding: EncRaw,
		Pixels: []byte{
			0xF0, 0x20, 0x10, 0xFF,
			0x10, 0x20, 0xF0, 0xFF,
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	img := c.Image()
	if got, want := img.RGBAAt(1, 1), (color.RGBA{R: 0x10, G: 0x20, B: 0xF0, A: 0xFF}); got != want {
		t.Errorf("pixel (1,1) = %+v, want %+v", got, want)
	}
	if got, want := img.RGBAAt(2, 1), (color.RGBA{R: 0xF0, G: 0x20, B: 0x10, A: 0xFF}); got != want {
		t.Errorf("pixel (2,1) = %+v, want %+v", got, want)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("pixel (0,0) = %+v, want untouched", got)
	}
}

func TestCanvasApplyRawShortBuffer(t *testing.T) {
	c := NewCanvas(4, 4, DefaultPixelFormat)
	err := c.Apply(&DecodedRectangle{
		Width: 2, Height: 2, Encoding: EncRaw,
		Pixels: []byte{1, 2, 3},
	})
	if err == nil {
		t.Error("Apply accepted a short pixel buffer")
	}
}

func TestCanvasApplyCopyRect(t *testing.T) {
	c := NewCanvas(4, 4, DefaultPixelFormat)

	if err := c.Apply(&DecodedRectangle{
		X: 0, Y: 0, Width: 1, Height: 1,
		Encoding: EncRaw,
		Pixels:   []byte{0x00, 0x00, 0xFF, 0xFF},
	}); err != nil {
		t.Fatalf("Apply raw: %v", err)
	}

	// Copy the red pixel from (0,0) to (2,2).
	if err := c.Apply(&DecodedRectangle{
		X: 2, Y: 2, Width: 1, Height: 1,
		Encoding: EncCopyRect,
		Pixels:   []byte{0x00, 0x00, 0x00, 0x00},
	}); err != nil {
		t.Fatalf("Apply copyrect: %v", err)
	}

	img := c.Image()
	want := color.RGBA{R: 0xFF, A: 0xFF}
	if got := img.RGBAAt(2, 2); got != want {
		t.Errorf("pixel (2,2) = %+v, want %+v", got, want)
	}
}

func TestCanvasApplyCopyRectShortPayload(t *testing.T) {
	c := NewCanvas(4, 4, DefaultPixelFormat)
	err := c.Apply(&DecodedRectangle{
		Width: 1, Height: 1, Encoding: EncCopyRect,
		Pixels: []byte{0x00},
	})
	if err == nil {
		t.Error("Apply accepted a short copyrect payload")
	}
}

func TestCanvasSkipsEncodedRectangles(t *testing.T) {
	c := NewCanvas(4, 4, DefaultPixelFormat)
	if err := c.Apply(&DecodedRectangle{
		Width: 2, Height: 2, Encoding: EncZRLE,
		Pixels: []byte{0, 0, 0, 0},
	}); err != nil {
		t.Errorf("Apply of an undecoded rectangle should be a no-op, got %v", err)
	}
}

func TestCanvasImageIsACopy(t *testing.T) {
	c := NewCanvas(2, 2, DefaultPixelFormat)
	img := c.Image()
	img.SetRGBA(0, 0, color.RGBA{R: 0xFF, A: 0xFF})

	if got := c.Image().RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("mutating a snapshot leaked into the canvas: %+v", got)
	}
}
