// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded post images: it checks the format,
// downscales anything wider than MaxWidth and re-encodes the result,
// dropping EXIF and other metadata along the way.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/webp" // register the WebP decoder
)

const (
	// MaxBytes is the largest accepted upload.
	MaxBytes = 5 << 20
	// MaxWidth is the widest image kept; larger ones are scaled down.
	MaxWidth = 1200
	// MaxPixels guards against decompression bombs.
	MaxPixels = 40_000_000

	jpegQuality = 85
)

var (
	// ErrTooLarge is returned for uploads over MaxBytes or MaxPixels.
	ErrTooLarge = errors.New("image is too large (max 5 MiB)")
	// ErrUnsupported is returned for data that is not a JPEG, PNG, GIF or WebP image.
	ErrUnsupported = errors.New("upload a valid image: JPEG, PNG, GIF or WebP")
)

// Image is a processed upload ready for the blob store.
type Image struct {
	Data        []byte
	Ext         string // without the dot: "jpg" or "png"
	ContentType string
	Width       int
	Height      int
}

// Process validates and normalises an uploaded image. JPEG input stays
// JPEG; every other format is re-encoded as PNG.
func Process(data []byte) (*Image, error) {
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupported
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, ErrTooLarge
	}

	var src image.Image
	if format == "gif" {
		// Only the first frame survives.
		src, err = gif.Decode(bytes.NewReader(data))
	} else {
		src, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, ErrUnsupported
	}

	dst := src
	if src.Bounds().Dx() > MaxWidth {
		g := gift.New(gift.Resize(MaxWidth, 0, gift.LanczosResampling))
		rgba := image.NewRGBA(g.Bounds(src.Bounds()))
		g.Draw(rgba, src)
		dst = rgba
	}

	var buf bytes.Buffer
	out := &Image{Width: dst.Bounds().Dx(), Height: dst.Bounds().Dy()}
	if format == "jpeg" {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
		out.Ext, out.ContentType = "jpg", "image/jpeg"
	} else {
		err = png.Encode(&buf, dst)
		out.Ext, out.ContentType = "png", "image/png"
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", out.Ext, err)
	}
	out.Data = buf.Bytes()
	return out, nil
}
