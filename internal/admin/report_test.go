// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package admin

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogicum/internal/database"
	"blogicum/internal/models"
)

func TestPostReport(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	travel := &models.Category{ID: 1, Title: "Travel", IsPublished: true, IsVisible: true}
	posts := []models.Post{
		{ID: 1, Title: "Public", PubDate: now.Add(-time.Hour), IsPublished: true, Author: models.PostAuthor{Username: "ann"}, CategoryID: &travel.ID, Category: travel, CommentCount: 1200},
		{ID: 2, Title: "Draft", PubDate: now.Add(-time.Hour), Author: models.PostAuthor{Username: "ann"}},
		{ID: 3, Title: "Later", PubDate: now.Add(time.Hour), IsPublished: true, Author: models.PostAuthor{Username: "bob"}},
	}

	var buf bytes.Buffer
	require.NoError(t, PostReport(&buf, posts, "Не задано", now))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "public")
	assert.Contains(t, lines[1], "Travel")
	assert.Contains(t, lines[1], "1,200")
	assert.Contains(t, lines[2], "draft")
	assert.Contains(t, lines[2], "Не задано", "missing category should use the placeholder")
	assert.Contains(t, lines[3], "scheduled")
}

func TestTable_EmptyCells(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "-", "A", "B")
	tbl.Row("x", "")
	require.NoError(t, tbl.Flush())

	assert.Equal(t, "A  B\nx  -\n", buf.String())
}

func TestCategoriesAndLocations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Categories(&buf, []models.Category{
		{Slug: "travel", Title: "Travel", IsPublished: true, PostCount: 3},
	}, "n/a"))
	out := buf.String()
	assert.Contains(t, out, "travel")
	assert.Contains(t, out, "n/a", "empty description should use the placeholder")

	buf.Reset()
	require.NoError(t, Locations(&buf, []models.Location{{ID: 7, Name: "Moscow", IsPublished: true, CreatedAt: time.Now()}}, "n/a"))
	assert.Contains(t, buf.String(), "Moscow")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Путе…", truncate("Путешествие", 5))
}

func TestMigrations(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := Migrations(&buf, []database.MigrationState{
		{Version: 1, File: "00001_create_users.sql", Applied: true, AppliedAt: now.Add(-2 * time.Hour)},
		{Version: 2, File: "00002_create_categories_locations.sql"},
	}, "-", now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "applied")
	assert.Contains(t, lines[1], "2 hours ago")
	assert.Contains(t, lines[2], "pending")
	assert.True(t, strings.HasSuffix(lines[2], "-"))
}

func TestComments(t *testing.T) {
	written := time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)
	long := strings.Repeat("ж", 60)
	var buf bytes.Buffer
	require.NoError(t, Comments(&buf, []models.Comment{
		{ID: 7, AuthorUsername: "ann", Text: "hi", CreatedAt: written},
		{ID: 8, Text: long, CreatedAt: written},
	}, "-"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ann")
	assert.Contains(t, lines[1], "2026-05-01 09:30")
	assert.Contains(t, lines[2], " - ", "orphaned comment shows the placeholder author")
	assert.Contains(t, lines[2], strings.Repeat("ж", 50))
	assert.NotContains(t, lines[2], strings.Repeat("ж", 51))
}
