// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"blogicum/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"

	// TwoFAVerifyPath is where a half signed-in user enters a TOTP code.
	TwoFAVerifyPath = "/auth/2fa/verify/"
)

// LoadSession puts the visitor's session, if any, into the request
// context. It never blocks a request; a Valkey failure downgrades the
// visitor to anonymous.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// Treat as anonymous rather than failing the page.
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				r = r.WithContext(WithSession(r.Context(), data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects anonymous visitors to loginURL with the original
// path in the "next" query parameter. A user who passed the password step
// but still owes a TOTP code is sent to the verification page instead.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromCtx(r.Context())
			switch {
			case sess == nil:
				http.Redirect(w, r, LoginRedirect(loginURL, r.URL.RequestURI()), http.StatusSeeOther)
				return
			case !sess.Authenticated():
				http.Redirect(w, r, TwoFAVerifyPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession lets through any session, including one that has not
// finished 2FA yet. It guards the 2FA verification pages themselves.
func RequireSession(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFromCtx(r.Context()) == nil {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRedirect builds the login URL carrying the page to return to.
func LoginRedirect(loginURL, next string) string {
	if next == "" {
		return loginURL
	}
	return loginURL + "?next=" + url.QueryEscape(next)
}

// WithSession returns ctx carrying data for SessionFromCtx.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
