package rfb

import (
	"image/color"
)

// pixelValue packs the raw bytes of a single native pixel into a uint32
// according to the format's byte order. b must hold at least
// pf.BytesPerPixel() bytes.
func pixelValue(b []byte, pf *PixelFormat) uint32 {
	switch pf.BytesPerPixel() {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(pf.order().Uint16(b))
	default:
		return pf.order().Uint32(b)
	}
}

// pixelToRGBA converts a packed pixel value to an RGBA color according
// to the given true-colour pixel format. Channel values are widened
// from the format's per-channel range to 8 bits.
func pixelToRGBA(px uint32, pf *PixelFormat) color.RGBA {
	r := (px >> pf.RedShift) & uint32(pf.RedMax)
	g := (px >> pf.GreenShift) & uint32(pf.GreenMax)
	b := (px >> pf.BlueShift) & uint32(pf.BlueMax)
	if pf.RedMax > 0 && pf.RedMax < 255 {
		r = r * 255 / uint32(pf.RedMax)
	}
	if pf.GreenMax > 0 && pf.GreenMax < 255 {
		g = g * 255 / uint32(pf.GreenMax)
	}
	if pf.BlueMax > 0 && pf.BlueMax < 255 {
		b = b * 255 / uint32(pf.BlueMax)
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xFF}
}
