// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"blogicum/internal/markdown"
)

// DateTimeLocal is the layout of <input type="datetime-local"> values.
const DateTimeLocal = "2006-01-02T15:04"

func funcMap(opts Options) template.FuncMap {
	media := opts.MediaURL
	if media == nil {
		media = func(key string) string { return "/media/" + key }
	}

	return template.FuncMap{
		// media resolves a post image key, which is a *string on the model.
		"media": func(key *string) string {
			if key == nil || *key == "" {
				return ""
			}
			return media(*key)
		},
		"markdown": markdown.Render,
		// linebreaks escapes plain text and keeps its line breaks.
		"linebreaks": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(strings.TrimSpace(s))
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
		"date": func(t time.Time) string {
			return t.Local().Format("2 January 2006, 15:04")
		},
		"ago": func(t time.Time) string {
			return humanize.Time(t)
		},
		"datetimeLocal": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format(DateTimeLocal)
		},
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"bytes": func(n int) string {
			return humanize.IBytes(uint64(n))
		},
		"truncate": func(n int, s string) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return strings.TrimSpace(string(r[:n])) + "…"
		},
		// future reports whether t is still ahead, marking scheduled posts.
		"future": func(t time.Time) bool {
			return t.After(time.Now())
		},
		"deref": func(id *int64) int64 {
			if id == nil {
				return 0
			}
			return *id
		},
	}
}
