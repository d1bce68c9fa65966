package rfb

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/bigangryrobot/go-rfb/logger"
)

// Canvas is the client's view of the remote framebuffer: an RGBA
// surface that decoded rectangles are blitted onto. It is safe for
// concurrent use.
type Canvas struct {
	mu  sync.RWMutex
	pf  PixelFormat
	img *image.RGBA
}

// NewCanvas creates a canvas with the session's geometry and pixel
// format.
func NewCanvas(width, height int, pf PixelFormat) *Canvas {
	return &Canvas{
		pf:  pf,
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Width returns the width of the canvas.
func (c *Canvas) Width() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.Bounds().Dx()
}

// Height returns the height of the canvas.
func (c *Canvas) Height() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.Bounds().Dy()
}

// Image returns a copy of the current framebuffer. It is safe to use
// while the canvas keeps being updated.
func (c *Canvas) Image() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := *c.img
	clone.Pix = make([]byte, len(c.img.Pix))
	copy(clone.Pix, c.img.Pix)
	return &clone
}

// Apply blits one decoded rectangle onto the canvas. Raw pixel data is
// translated from the session's pixel format; CopyRect moves an area
// of the framebuffer. Rectangles that are still encoded are skipped.
func (c *Canvas) Apply(rect *DecodedRectangle) error {
	switch rect.Encoding {
	case EncRaw:
		return c.drawPixels(rect)
	case EncCopyRect:
		if len(rect.Pixels) < 4 {
			return fmt.Errorf("copyrect: payload too short: %d bytes", len(rect.Pixels))
		}
		srcX := binary.BigEndian.Uint16(rect.Pixels[0:2])
		srcY := binary.BigEndian.Uint16(rect.Pixels[2:4])
		c.copyArea(image.Point{int(srcX), int(srcY)}, image.Point{int(rect.X), int(rect.Y)}, image.Point{int(rect.Width), int(rect.Height)})
		return nil
	default:
		logger.Debugf("canvas: skipping undecoded %s rectangle at (%d,%d)", rect.Encoding, rect.X, rect.Y)
		return nil
	}
}

func (c *Canvas) drawPixels(rect *DecodedRectangle) error {
	bpp := c.pf.BytesPerPixel()
	want := int(rect.Width) * int(rect.Height) * bpp
	if len(rect.Pixels) < want {
		return fmt.Errorf("raw: pixel buffer too short: got %d, want %d", len(rect.Pixels), want)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for y := 0; y < int(rect.Height); y++ {
		for x := 0; x < int(rect.Width); x++ {
			px := rect.Pixels[(y*int(rect.Width)+x)*bpp:]
			col := pixelToRGBA(pixelValue(px, &c.pf), &c.pf)
			c.img.SetRGBA(int(rect.X)+x, int(rect.Y)+y, col)
		}
	}
	return nil
}

func (c *Canvas) copyArea(src, dst, size image.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dstRect := image.Rect(dst.X, dst.Y, dst.X+size.X, dst.Y+size.Y)
	draw.Draw(c.img, dstRect, c.img, src, draw.Src)
}
