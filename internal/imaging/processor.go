// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging builds preview thumbnails for image attachments.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ErrUnsupportedFormat is returned for data that is not a supported image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Thumbnail is an encoded preview image.
type Thumbnail struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// Thumbnailer renders previews that fit within a bounding box.
type Thumbnailer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewThumbnailer returns a thumbnailer for a width x height box.
func NewThumbnailer(width, height int) *Thumbnailer {
	return &Thumbnailer{MaxWidth: width, MaxHeight: height, Quality: 82}
}

// IsImage reports whether data looks like an image this package can decode.
func IsImage(data []byte) bool {
	return detectFormat(data) != ""
}

// Make decodes the image read from r, applies its EXIF orientation and
// returns a JPEG preview no larger than the bounding box.
func (t *Thumbnailer) Make(r io.Reader) (*Thumbnail, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if detectFormat(data) == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > t.MaxWidth || b.Dy() > t.MaxHeight {
		img = imaging.Fit(img, t.MaxWidth, t.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: t.Quality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	b = img.Bounds()
	return &Thumbnail{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy(), MimeType: "image/jpeg"}, nil
}

// flatten composes transparent images onto white before JPEG encoding.
func flatten(img image.Image) image.Image {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White.C)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation rotates and flips img according to an EXIF orientation.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF decoding in disintegration/imaging is vulnerable (CVE-2023-36308).
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
