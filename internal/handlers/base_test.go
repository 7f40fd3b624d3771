// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"blogicum/internal/blog"
	"blogicum/internal/render"
)

// bareBase is a Base without sessions or a database, enough for the
// error paths that never reach the service.
func bareBase(t *testing.T) *Base {
	t.Helper()
	renderer, err := render.New(render.Options{MediaURL: func(key string) string { return "/media/" + key }})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return NewBase(renderer, nil, nil, "/auth/login/")
}

func TestFail(t *testing.T) {
	b := bareBase(t)

	tests := []struct {
		name         string
		err          error
		params       []string
		wantStatus   int
		wantLocation string
	}{
		{"not found", blog.ErrNotFound, nil, http.StatusNotFound, ""},
		{"forbidden goes back to the post", fmt.Errorf("edit: %w", blog.ErrForbidden), []string{"post_id", "5"}, http.StatusSeeOther, "/posts/5/"},
		{"forbidden without a post", blog.ErrForbidden, nil, http.StatusNotFound, ""},
		{"unauthenticated", blog.ErrUnauthenticated, nil, http.StatusSeeOther, "/auth/login/?next=%2Fposts%2F5%2Fedit%2F"},
		{"anything else", errors.New("db down"), nil, http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withChiURLParams(httptest.NewRequest(http.MethodPost, "/posts/5/edit/", nil), tt.params...)
			rec := httptest.NewRecorder()
			b.fail(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location: got %q, want %q", got, tt.wantLocation)
			}
		})
	}
}
