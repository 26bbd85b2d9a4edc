// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging validates content images uploaded by staff (banner, post,
// mini post and section images) and scales oversized ones down before they
// are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxUploadSize is the largest content image accepted.
	MaxUploadSize = 10 << 20

	// MaxWidth is the widest image stored; wider uploads are scaled down.
	MaxWidth = 1600

	// maxPixels caps decoded dimensions to guard against decompression bombs.
	maxPixels = 40_000_000

	jpegQuality = 82
)

// ErrUnsupported is returned for content that is not a supported image.
var ErrUnsupported = errors.New("imaging: unsupported image type")

// extensions maps the accepted sniffed content types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is a processed upload ready for storage.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Prepare sniffs the content type of data, rejects anything that is not a
// raster image and scales images wider than maxWidth down to maxWidth,
// re-encoding them as JPEG. GIFs are kept as-is to preserve animation.
func Prepare(data []byte, maxWidth int) (*Image, error) {
	if maxWidth <= 0 {
		maxWidth = MaxWidth
	}
	ct := http.DetectContentType(data)
	ext, ok := extensions[ct]
	if !ok {
		return nil, ErrUnsupported
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	out := &Image{Data: data, ContentType: ct, Ext: ext, Width: cfg.Width, Height: cfg.Height}
	if cfg.Width <= maxWidth || ct == "image/gif" {
		return out, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	height := int(float64(bounds.Dy()) * float64(maxWidth) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &Image{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Ext:         ".jpg",
		Width:       maxWidth,
		Height:      height,
	}, nil
}
