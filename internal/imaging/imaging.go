// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises cover images before they are stored: any
// supported upload is decoded, auto-rotated from its EXIF orientation,
// shrunk to the cover width and re-encoded as JPEG without metadata.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	// MaxCoverWidth is the widest cover image ever stored.
	MaxCoverWidth = 1600
	// CoverQuality is the JPEG quality of stored covers.
	CoverQuality = 82
	// ContentType is the MIME type of every normalised cover.
	ContentType = "image/jpeg"
)

var (
	// ErrUnsupportedFormat is returned for payloads that are not an accepted image.
	ErrUnsupportedFormat = errors.New("imaging: unsupported image format")
	// ErrInvalidImage is returned when an accepted format fails to decode.
	ErrInvalidImage = errors.New("imaging: invalid image")
)

// AllowedTypes lists the upload MIME types NormalizeCover accepts.
var AllowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Cover is a normalised cover ready for upload.
type Cover struct {
	Data   []byte
	Width  int
	Height int
}

// DetectType sniffs the MIME type of data.
func DetectType(data []byte) string {
	return http.DetectContentType(data)
}

// NormalizeCover decodes data, fits it to MaxCoverWidth (never upscaling)
// and encodes it as JPEG.
func NormalizeCover(data []byte) (*Cover, error) {
	if !AllowedTypes[DetectType(data)] {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img = fitWidth(img, MaxCoverWidth)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(CoverQuality)); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}

	b := img.Bounds()
	return &Cover{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// fitWidth scales img down to width, keeping the aspect ratio.
func fitWidth(img image.Image, width int) image.Image {
	if img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}
