// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Local stores blobs in a directory and serves them under a URL prefix.
type Local struct {
	fs      afero.Fs
	baseURL string
}

// NewLocal returns a blob store rooted at dir. The directory is created
// if missing. baseURL is the prefix the media handler is mounted at.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return NewLocalFs(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

// NewLocalFs returns a blob store over an arbitrary afero filesystem.
// Tests pass afero.NewMemMapFs().
func NewLocalFs(fs afero.Fs, baseURL string) *Local {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{fs: fs, baseURL: baseURL}
}

// clean rejects keys that would escape the media root.
func clean(key string) (string, error) {
	k := path.Clean("/" + key)
	if k == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.FromSlash(k), nil
}

// Put writes the object, creating parent directories as needed.
func (l *Local) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	name, err := clean(key)
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("local mkdir %s: %w", key, err)
	}
	f, err := l.fs.Create(name)
	if err != nil {
		return fmt.Errorf("local create %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("local write %s: %w", key, err)
	}
	return f.Close()
}

// Delete removes the object. A missing object is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	name, err := clean(key)
	if err != nil {
		return err
	}
	if err := l.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local delete %s: %w", key, err)
	}
	return nil
}

// URL returns the media URL of an object.
func (l *Local) URL(key string) string {
	return l.baseURL + strings.TrimPrefix(key, "/")
}

// Handler serves stored objects. Directory listings are disabled.
func (l *Local) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(l.fs))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
