// Package web provides the embedded static assets served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. The highlighting
// stylesheet is generated at runtime and served next to it.
//
//go:embed all:static
var StaticFS embed.FS
