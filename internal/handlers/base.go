// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers maps the blog's URLs onto blog.Service operations and
// translates their errors into pages, redirects and flash messages.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"blogicum/internal/blog"
	"blogicum/internal/middleware"
	"blogicum/internal/render"
	"blogicum/internal/session"
)

// Base carries what every handler group needs. Groups embed it; it
// holds no per-request state.
type Base struct {
	renderer *render.Renderer
	sessions *session.Store
	svc      *blog.Service
	loginURL string
}

// NewBase creates the shared handler dependencies.
func NewBase(renderer *render.Renderer, sessions *session.Store, svc *blog.Service, loginURL string) *Base {
	return &Base{
		renderer: renderer,
		sessions: sessions,
		svc:      svc,
		loginURL: loginURL,
	}
}

// viewer returns the signed-in user of the request, or the zero Viewer.
func viewer(r *http.Request) blog.Viewer {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.Authenticated() {
		return blog.Viewer{}
	}
	return blog.Viewer{ID: sess.UserID, Username: sess.Username}
}

// page renders a template with status 200, attaching any queued flashes.
func (b *Base) page(w http.ResponseWriter, r *http.Request, name, title string, data map[string]any) {
	b.pageStatus(w, r, http.StatusOK, name, title, data)
}

func (b *Base) pageStatus(w http.ResponseWriter, r *http.Request, status int, name, title string, data map[string]any) {
	pd := &render.PageData{Title: title, Data: data}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && b.sessions != nil {
		flashes, err := b.sessions.PopFlashes(r.Context(), r, sess)
		if err != nil {
			slog.Warn("pop flashes failed", "error", err)
		}
		pd.Flashes = flashes
	}
	b.renderer.PageStatus(w, r, status, name, pd)
}

// flash queues a message for the next page of a signed-in user.
func (b *Base) flash(r *http.Request, kind, message string) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || b.sessions == nil {
		return
	}
	if err := b.sessions.AddFlash(r.Context(), r, sess, kind, message); err != nil {
		slog.Warn("add flash failed", "error", err)
	}
}

// redirect answers a form submission with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// NotFound renders the 404 page.
func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.pageStatus(w, r, http.StatusNotFound, "404", "Page not found", nil)
}

// CSRFFailure renders the page shown when a form fails CSRF validation.
func (b *Base) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	b.renderer.PageStatus(w, r, http.StatusForbidden, "403csrf", &render.PageData{Title: "Request rejected"})
}

// ServerError renders the 500 page. It never touches the session, which
// may be the thing that failed.
func (b *Base) ServerError(w http.ResponseWriter, r *http.Request) {
	b.renderer.PageStatus(w, r, http.StatusInternalServerError, "500", &render.PageData{Title: "Server error"})
}

// TooManyRequests renders the rate limiter's rejection page.
func (b *Base) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	b.renderer.PageStatus(w, r, http.StatusTooManyRequests, "429", &render.PageData{Title: "Too many attempts"})
}

// fail translates a service error that the handler did not handle itself.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		b.NotFound(w, r)
	case errors.Is(err, blog.ErrUnauthenticated):
		redirect(w, r, middleware.LoginRedirect(b.loginURL, r.URL.RequestURI()))
	case errors.Is(err, blog.ErrForbidden):
		// Ownership failures all live under a post; without one there
		// is nothing to send the viewer back to.
		if postID, ok := idParam(r, "post_id"); ok {
			b.notOwner(w, r, postID, "posts and comments")
			return
		}
		b.NotFound(w, r)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		b.ServerError(w, r)
	}
}

// idParam parses a positive integer URL parameter. ok is false for
// anything else, which callers answer with 404.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// validationErrors extracts per-field messages from a service error.
func validationErrors(err error) (map[string]string, bool) {
	var ve *blog.ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	return ve.Messages(), true
}

// safeNext accepts only local absolute paths, so a crafted ?next= cannot
// send users to another site after login.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
