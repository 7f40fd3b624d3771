// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage is the blob store for uploaded post images. Two
// backends implement Blobs: an S3-compatible bucket and a local media
// directory served by the application itself.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"blogicum/internal/imaging"
)

// UploadDir is the key prefix of every post image.
const UploadDir = "blogs_images"

// Blobs stores opaque objects under string keys.
type Blobs interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// URL returns the address a browser loads the object from.
	URL(key string) string
}

// Images validates, normalises and stores post images.
type Images struct {
	blobs Blobs
}

// NewImages returns an image saver on top of blobs.
func NewImages(blobs Blobs) *Images {
	return &Images{blobs: blobs}
}

// Save processes an upload and stores it under UploadDir with a random
// name. Invalid images return imaging.ErrUnsupported or imaging.ErrTooLarge.
func (i *Images) Save(ctx context.Context, data []byte) (string, error) {
	img, err := imaging.Process(data)
	if err != nil {
		return "", err
	}
	key := path.Join(UploadDir, uuid.NewString()+"."+img.Ext)
	if err := i.blobs.Put(ctx, key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// Remove deletes a stored image.
func (i *Images) Remove(ctx context.Context, key string) error {
	return i.blobs.Delete(ctx, key)
}

// URL returns the public address of a stored image.
func (i *Images) URL(key string) string {
	return i.blobs.URL(key)
}
