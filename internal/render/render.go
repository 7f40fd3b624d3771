// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the blog pages.
// Every page is parsed together with the base layout and the shared
// partials, and rendered into a buffer so a template error never leaves
// a half-written response behind.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"blogicum/internal/middleware"
	"blogicum/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	Session   *session.Data   // Current user session (nil if anonymous)
	CSRFToken string          // CSRF token for forms
	Data      map[string]any  // Page-specific data
	Flashes   []session.Flash // One-time notification messages
}

// ViewerID returns the signed-in user's ID, or uuid.Nil for visitors.
// Templates pass it to the models' OwnedBy methods.
func (p *PageData) ViewerID() uuid.UUID {
	if !p.Session.Authenticated() {
		return uuid.Nil
	}
	return p.Session.UserID
}

// Options configures template helpers that depend on the deployment.
type Options struct {
	// MediaURL maps a blob key to the URL the browser loads it from.
	MediaURL func(key string) string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout and the
// partials (files whose names start with an underscore).
func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap:   funcMap(opts),
	}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	var partials, pages []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case name == "base.html":
		case strings.HasPrefix(name, "_"):
			partials = append(partials, path.Join("templates", name))
		default:
			pages = append(pages, name)
		}
	}

	for _, name := range pages {
		files := append([]string{"templates/base.html"}, partials...)
		files = append(files, path.Join("templates", name))

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Has reports whether a page template with the given name exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a full page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page with the given status code. The CSRF
// token and the session are taken from the request context.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// SignedIn reports whether the page is rendered for a fully signed-in user.
func (p *PageData) SignedIn() bool {
	return p.Session.Authenticated()
}
