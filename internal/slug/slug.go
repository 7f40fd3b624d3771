// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates and validates category slugs.
package slug

import (
	"regexp"
	"strings"

	gosimple "github.com/gosimple/slug"
)

// MaxLen matches the categories.slug column.
const MaxLen = 64

// valid is the accepted slug charset: latin letters, digits, hyphen and
// underscore. It mirrors the CHECK constraint on categories.slug.
var valid = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Generate creates a URL-friendly slug from a title, transliterating
// Cyrillic and other scripts to latin.
// Example: "Путешествия по России" → "puteshestviia-po-rossii"
func Generate(s string) string {
	out := gosimple.MakeLang(s, "ru")
	if len(out) > MaxLen {
		out = strings.TrimRight(out[:MaxLen], "-")
	}
	return out
}

// Valid reports whether s may be used as a category slug.
func Valid(s string) bool {
	return len(s) <= MaxLen && valid.MatchString(s)
}
