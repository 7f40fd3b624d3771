// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package admin formats the tabular listings printed by the blogicum
// admin commands. Cells without a value show a configurable placeholder.
package admin

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"blogicum/internal/database"
	"blogicum/internal/models"
)

// titleWidth is where long titles are cut in the post report.
const titleWidth = 40

// Table writes aligned rows. Empty cells are replaced with Empty.
type Table struct {
	tw    *tabwriter.Writer
	Empty string
}

// NewTable starts a table on w with the given header.
func NewTable(w io.Writer, empty string, header ...string) *Table {
	t := &Table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0), Empty: empty}
	t.Row(header...)
	return t
}

// Row writes one line.
func (t *Table) Row(cells ...string) {
	for i, c := range cells {
		if c == "" {
			c = t.Empty
		}
		if i > 0 {
			io.WriteString(t.tw, "\t")
		}
		io.WriteString(t.tw, c)
	}
	io.WriteString(t.tw, "\n")
}

// Flush aligns and writes out the buffered rows.
func (t *Table) Flush() error {
	return t.tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// postStatus names where a post stands relative to the public feeds.
func postStatus(p *models.Post, now time.Time) string {
	switch {
	case !p.IsPublished:
		return "draft"
	case p.IsScheduled(now):
		return "scheduled"
	case !p.IsVisible(now):
		return "hidden"
	default:
		return "public"
	}
}

// PostReport prints one row per post: who wrote it, where it is filed and
// whether visitors can see it at now.
func PostReport(w io.Writer, posts []models.Post, empty string, now time.Time) error {
	t := NewTable(w, empty, "ID", "TITLE", "AUTHOR", "CATEGORY", "LOCATION", "PUB DATE", "STATUS", "COMMENTS", "IMAGE")
	for i := range posts {
		p := &posts[i]
		var category, location, image string
		if p.Category != nil {
			category = p.Category.Title
		}
		if p.Location != nil {
			location = p.Location.Name
		}
		if p.Image != nil {
			image = *p.Image
		}
		t.Row(
			strconv.FormatInt(p.ID, 10),
			truncate(p.Title, titleWidth),
			p.Author.Username,
			category,
			location,
			p.PubDate.Local().Format("2006-01-02 15:04"),
			postStatus(p, now),
			humanize.Comma(int64(p.CommentCount)),
			image,
		)
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("write post report: %w", err)
	}
	return nil
}

// Categories prints the category list with post counts.
func Categories(w io.Writer, cats []models.Category, empty string) error {
	t := NewTable(w, empty, "SLUG", "TITLE", "PUBLISHED", "VISIBLE", "POSTS", "DESCRIPTION")
	for _, c := range cats {
		t.Row(c.Slug, c.Title, yesNo(c.IsPublished), yesNo(c.IsVisible),
			humanize.Comma(int64(c.PostCount)), truncate(c.Description, titleWidth))
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	return nil
}

// Comments prints a post's comments, oldest first, with a text preview.
func Comments(w io.Writer, comments []models.Comment, empty string) error {
	t := NewTable(w, empty, "ID", "AUTHOR", "WRITTEN", "TEXT")
	for i := range comments {
		c := &comments[i]
		t.Row(strconv.FormatInt(c.ID, 10), c.AuthorUsername,
			c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Preview())
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("write comments: %w", err)
	}
	return nil
}

// Locations prints the location list.
func Locations(w io.Writer, locs []models.Location, empty string) error {
	t := NewTable(w, empty, "ID", "NAME", "PUBLISHED", "ADDED")
	for _, l := range locs {
		t.Row(strconv.FormatInt(l.ID, 10), l.Name, yesNo(l.IsPublished), humanize.Time(l.CreatedAt))
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("write locations: %w", err)
	}
	return nil
}

// Users prints the account list.
func Users(w io.Writer, users []models.User, empty string) error {
	t := NewTable(w, empty, "USERNAME", "NAME", "EMAIL", "SUPERUSER", "2FA", "JOINED")
	for _, u := range users {
		t.Row(u.Username, u.FullName(), u.Email, yesNo(u.IsSuperuser), yesNo(u.TOTPEnabled),
			u.CreatedAt.Local().Format("2006-01-02"))
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

// Migrations prints the schema version table. Pending rows have no
// applied time.
func Migrations(w io.Writer, states []database.MigrationState, empty string, now time.Time) error {
	t := NewTable(w, empty, "VERSION", "FILE", "STATE", "APPLIED")
	for _, st := range states {
		state, applied := "pending", ""
		if st.Applied {
			state = "applied"
			applied = humanize.RelTime(st.AppliedAt, now, "ago", "from now")
		}
		t.Row(strconv.FormatInt(st.Version, 10), st.File, state, applied)
	}
	if err := t.Flush(); err != nil {
		return fmt.Errorf("write migrations: %w", err)
	}
	return nil
}
