// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// imageCacheControl lets browsers and CDNs keep images forever. Every
// upload gets a fresh random key, so an object never changes.
const imageCacheControl = "public, max-age=31536000, immutable"

// S3Config locates a bucket on an S3-compatible service.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is an optional CDN base that replaces the path-style URL.
	PublicURL string
}

// S3 stores blobs in a public-read bucket. Path-style addressing keeps
// MinIO, Ceph and Hetzner working unchanged.
type S3 struct {
	s3     *s3.Client
	bucket string
	// bases are the URL prefixes objects are reachable under. The first
	// one is used for new URLs.
	bases []string
}

// NewS3 creates an S3 blob store. Returns (nil, nil) if the endpoint or
// credentials are empty, so callers can fall back to local storage.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	pathStyle := endpoint + "/" + cfg.Bucket + "/"
	bases := []string{pathStyle}
	if cfg.PublicURL != "" {
		bases = []string{strings.TrimRight(cfg.PublicURL, "/") + "/", pathStyle}
	}
	return &S3{s3: client, bucket: cfg.Bucket, bases: bases}, nil
}

// Put uploads an object with a public-read ACL so it can be served directly.
func (c *S3) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(imageCacheControl),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("upload %s to bucket %s: %w", key, c.bucket, err)
	}
	return nil
}

// Delete removes an object from the bucket.
func (c *S3) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s from bucket %s: %w", key, c.bucket, err)
	}
	return nil
}

// URL returns the public URL of an object.
func (c *S3) URL(key string) string {
	return c.bases[0] + key
}

// KeyFromURL extracts the object key from a public URL. Returns
// ("", false) if the URL does not belong to this bucket.
func (c *S3) KeyFromURL(rawURL string) (string, bool) {
	for _, base := range c.bases {
		if key, ok := strings.CutPrefix(rawURL, base); ok && key != "" {
			return key, true
		}
	}
	return "", false
}
