package rfb

import (
	"bytes"
	"testing"
)

func TestPixelFormatDerivations(t *testing.T) {
	tests := []struct {
		name       string
		pf         PixelFormat
		bpp        int
		cpixelSize int
	}{
		{"default bgra8888", DefaultPixelFormat, 4, 3},
		{"rgb565", PixelFormat{BPP: 16, Depth: 16, TrueColor: 1, RedMax: 31, GreenMax: 63, BlueMax: 31, RedShift: 11, GreenShift: 5}, 2, 2},
		{"bgr233", PixelFormat{BPP: 8, Depth: 8, TrueColor: 1, RedMax: 7, GreenMax: 7, BlueMax: 3, RedShift: 0, GreenShift: 3, BlueShift: 6}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pf.BytesPerPixel(); got != tt.bpp {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.bpp)
			}
			if got := tt.pf.CPixelSize(); got != tt.cpixelSize {
				t.Errorf("CPixelSize() = %d, want %d", got, tt.cpixelSize)
			}
		})
	}
}

func TestPixelFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		pf      PixelFormat
		wantErr bool
	}{
		{"default", DefaultPixelFormat, false},
		{"bad bpp", PixelFormat{BPP: 24, Depth: 24}, true},
		{"zero depth", PixelFormat{BPP: 32, Depth: 0}, true},
		{"depth exceeds bpp", PixelFormat{BPP: 16, Depth: 24}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPixelFormatMarshalRoundTrip(t *testing.T) {
	data, err := DefaultPixelFormat.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) != pixelFormatLen {
		t.Fatalf("wire length %d, want %d", len(data), pixelFormatLen)
	}

	var pf PixelFormat
	if err := pf.Read(bytes.NewReader(data)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pf != DefaultPixelFormat {
		t.Errorf("round trip: got %s, want %s", pf, DefaultPixelFormat)
	}
}

func TestPixelFormatUnmarshalShort(t *testing.T) {
	var pf PixelFormat
	if err := pf.Unmarshal([]byte{32, 24}); err == nil {
		t.Error("Unmarshal accepted a truncated pixel format")
	}
}
