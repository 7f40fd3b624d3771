// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog. It organizes routes into public, signed-in and auth groups with
// appropriate middleware stacks.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogicum/internal/handlers"
	"blogicum/internal/imaging"
	"blogicum/internal/markdown"
	"blogicum/internal/middleware"
	"blogicum/internal/session"
	"blogicum/web"
)

// maxBodyBytes caps request bodies: one image upload plus the form fields.
const maxBodyBytes = 2 * imaging.MaxBytes

// Deps groups what the router wires together.
type Deps struct {
	Sessions *session.Store
	Base     *handlers.Base
	Public   *handlers.Public
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Profile  *handlers.Profile
	Auth     *handlers.Auth

	// LoginLimiter throttles credential submissions per client IP.
	LoginLimiter *middleware.RateLimiter
	// Metrics is optional; nil disables request instrumentation.
	Metrics *middleware.Metrics
	// Media serves locally stored uploads under MediaPath. Nil when
	// images live in S3.
	Media     http.Handler
	MediaPath string

	// Health lists the backends /health pings, by name.
	Health map[string]func(context.Context) error

	LoginURL     string
	SecureCookie bool
	// TrustProxy takes client addresses from forwarding headers.
	TrustProxy bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) (chi.Router, error) {
	static, err := staticHandler()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Global middleware, applied to every request.
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(http.HandlerFunc(d.Base.ServerError)))
	r.Use(middleware.Logger)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.SecureHeaders(d.SecureCookie))

	// Health check and assets: no session, no CSRF.
	r.Get("/health", healthHandler(d.Health))
	r.Handle("/static/*", static)
	if d.Media != nil {
		prefix := strings.TrimSuffix(d.MediaPath, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, d.Media))
	}

	r.Group(func(r chi.Router) {
		// BodyLimit runs before CSRF, which is the first to parse the form.
		r.Use(middleware.BodyLimit(maxBodyBytes))
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.NewCSRF(d.SecureCookie, http.HandlerFunc(d.Base.CSRFFailure)))

		r.Get("/", d.Public.Index)
		r.Get("/posts/{post_id}/", d.Public.PostDetail)
		r.Get("/profile/{username}/", d.Public.Profile)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login/", d.Auth.LoginPage)
			r.With(d.LoginLimiter.Middleware).Post("/login/", d.Auth.LoginSubmit)
			r.Post("/logout/", d.Auth.Logout)
			r.Get("/registration/", d.Auth.RegistrationPage)
			r.Post("/registration/", d.Auth.RegistrationSubmit)

			// Code entry, reachable before the second factor is done.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(d.LoginURL))
				r.Get("/2fa/verify/", d.Auth.TwoFAVerifyPage)
				r.With(d.LoginLimiter.Middleware).Post("/2fa/verify/", d.Auth.TwoFAVerifySubmit)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(d.LoginURL))
				r.Get("/2fa/setup/", d.Auth.TwoFASetupPage)
				r.Post("/2fa/setup/", d.Auth.TwoFASetupSubmit)
				r.Post("/2fa/disable/", d.Auth.TwoFADisable)
			})
		})

		// Signed-in area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.LoginURL))

			r.Get("/posts/create/", d.Posts.CreateForm)
			r.Post("/posts/create/", d.Posts.Create)
			r.Get("/posts/{post_id}/edit/", d.Posts.EditForm)
			r.Post("/posts/{post_id}/edit/", d.Posts.Edit)
			r.Get("/posts/{post_id}/delete/", d.Posts.DeleteConfirm)
			r.Post("/posts/{post_id}/delete/", d.Posts.Delete)

			r.Post("/posts/{post_id}/comment/", d.Comments.Add)
			r.Get("/posts/{post_id}/edit_comment/{comment_id}/", d.Comments.EditForm)
			r.Post("/posts/{post_id}/edit_comment/{comment_id}/", d.Comments.Edit)
			r.Get("/posts/{post_id}/delete_comment/{comment_id}/", d.Comments.DeleteConfirm)
			r.Post("/posts/{post_id}/delete_comment/{comment_id}/", d.Comments.Delete)

			r.Get("/edit/", d.Profile.EditForm)
			r.Post("/edit/", d.Profile.Edit)
		})

		// Category slugs share the root namespace, so this goes last.
		r.Get("/{category_slug}/", d.Public.Category)

		r.NotFound(d.Base.NotFound)
	})

	return r, nil
}

// staticHandler serves the embedded assets plus the code highlighting
// stylesheet, which is generated from the chroma style at startup.
func staticHandler() (http.Handler, error) {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	var css bytes.Buffer
	if err := markdown.WriteCSS(&css); err != nil {
		return nil, fmt.Errorf("highlight stylesheet: %w", err)
	}
	highlight := css.Bytes()

	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/static/css/highlight.css" {
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Write(highlight)
			return
		}
		files.ServeHTTP(w, r)
	}), nil
}

// healthHandler pings every backend and answers 200 when all respond,
// 503 otherwise. The body names the failing backends.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		body := struct {
			Status string            `json:"status"`
			Failed map[string]string `json:"failed,omitempty"`
		}{Status: "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				if body.Failed == nil {
					body.Failed = map[string]string{}
				}
				body.Failed[name] = err.Error()
			}
		}

		status := http.StatusOK
		if len(body.Failed) > 0 {
			body.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
