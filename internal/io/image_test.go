package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepareCoverArt(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		maxSize int
		wantW   int
		wantH   int
	}{
		{"downscales wide", 800, 400, 500, 500, 250},
		{"downscales tall", 300, 600, 200, 100, 200},
		{"keeps small images", 120, 90, 500, 120, 90},
		{"no bound, convert only", 800, 400, 0, 800, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewImageService().PrepareCoverArt(
				context.Background(), encodePNG(t, tt.w, tt.h), tt.maxSize)
			if err != nil {
				t.Fatalf("PrepareCoverArt: %v", err)
			}

			img, format, err := image.Decode(bytes.NewReader(got))
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("format = %q, want jpeg", format)
			}
			if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != tt.wantW || h != tt.wantH {
				t.Errorf("dimensions = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPrepareCoverArt_RejectsNonImage(t *testing.T) {
	_, err := NewImageService().PrepareCoverArt(context.Background(), []byte("not an image"), 500)
	if err == nil {
		t.Fatal("expected a decode error")
	}
}
