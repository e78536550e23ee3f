// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnailFitsBox(t *testing.T) {
	data := encodePNG(t, createTestImage(800, 400))

	thumb, err := NewThumbnailer(200, 200).Make(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if thumb.Width != 200 || thumb.Height != 100 {
		t.Errorf("size = %dx%d; want 200x100", thumb.Width, thumb.Height)
	}
	if thumb.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q", thumb.MimeType)
	}
	if _, err := jpeg.Decode(bytes.NewReader(thumb.Data)); err != nil {
		t.Errorf("thumbnail is not a JPEG: %v", err)
	}
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, createTestImage(50, 30))

	thumb, err := NewThumbnailer(200, 200).Make(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if thumb.Width != 50 || thumb.Height != 30 {
		t.Errorf("size = %dx%d; want 50x30", thumb.Width, thumb.Height)
	}
}

func TestThumbnailRejectsNonImages(t *testing.T) {
	_, err := NewThumbnailer(200, 200).Make(strings.NewReader("%PDF-1.7 not an image"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Make(pdf) error = %v; want ErrUnsupportedFormat", err)
	}
}

func TestIsImage(t *testing.T) {
	if !IsImage(encodePNG(t, createTestImage(2, 2))) {
		t.Error("IsImage(png) = false")
	}
	if IsImage([]byte("plain text")) {
		t.Error("IsImage(text) = true")
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(40, 20)
	tests := []struct {
		orientation int
		w, h        int
	}{
		{1, 40, 20},
		{3, 40, 20},
		{6, 20, 40},
		{8, 20, 40},
	}
	for _, tt := range tests {
		b := applyOrientation(img, tt.orientation).Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("orientation %d: size = %dx%d; want %dx%d", tt.orientation, b.Dx(), b.Dy(), tt.w, tt.h)
		}
	}
}
