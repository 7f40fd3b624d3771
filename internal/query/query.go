// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query builds the SQL behind every post listing. It owns the
// public visibility predicate so that the feeds, the category pages and
// the author pages cannot drift apart. Nothing here touches the database.
package query

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"blogicum/internal/models"
)

// PageSize is the fixed number of posts per feed page.
const PageSize = 10

// psql renders $1, $2... placeholders for PostgreSQL.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostColumns is the column list of every post query, in scan order.
// store.scanPost must stay in sync with it.
var PostColumns = []string{
	"p.id", "p.title", "p.text", "p.pub_date", "p.author_id",
	"p.location_id", "p.category_id", "p.image", "p.is_published", "p.created_at",
	"u.username", "u.first_name", "u.last_name",
	"c.title", "c.slug", "c.description", "c.is_published", "c.is_visible",
	"l.name", "l.is_published",
	"(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comment_count",
}

// posts selects PostColumns with author, category and location joined.
func posts() sq.SelectBuilder {
	return psql.Select(PostColumns...).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		LeftJoin("categories c ON c.id = p.category_id").
		LeftJoin("locations l ON l.id = p.location_id")
}

// Published matches posts that are switched on and whose pub_date has passed.
func Published(now time.Time) sq.Sqlizer {
	return sq.And{
		sq.Eq{"p.is_published": true},
		sq.LtOrEq{"p.pub_date": now},
	}
}

// Visible is the public visibility predicate: published, not scheduled
// for later, and either uncategorised or filed under a visible category.
// It expects the categories table joined as "c".
func Visible(now time.Time) sq.Sqlizer {
	return sq.And{
		Published(now),
		sq.Or{
			sq.Eq{"p.category_id": nil},
			sq.Eq{"c.is_visible": true},
		},
	}
}

// Feed is a filtered, pub_date-ordered post listing. It carries the SQL
// filter and the same rule as a Go predicate for single-row checks.
type Feed struct {
	where sq.Sqlizer
	match func(p *models.Post) bool
}

// Matches reports whether p belongs to the feed. p must have its
// Category loaded when CategoryID is set.
func (f Feed) Matches(p *models.Post) bool {
	return f.match(p)
}

// PublicFeed lists every publicly visible post.
func PublicFeed(now time.Time) Feed {
	return Feed{
		where: Visible(now),
		match: func(p *models.Post) bool { return p.IsVisible(now) },
	}
}

// CategoryFeed lists the visible posts of one category. The caller
// resolves the slug and rejects unpublished categories beforehand.
func CategoryFeed(categoryID int64, now time.Time) Feed {
	return Feed{
		where: sq.And{
			sq.Eq{"p.category_id": categoryID},
			Visible(now),
		},
		match: func(p *models.Post) bool {
			return p.CategoryID != nil && *p.CategoryID == categoryID && p.IsVisible(now)
		},
	}
}

// AuthorFeed lists an author's posts. With includeHidden the author's
// drafts, scheduled posts and posts in hidden categories are included;
// otherwise the public visibility predicate applies.
func AuthorFeed(authorID uuid.UUID, includeHidden bool, now time.Time) Feed {
	byAuthor := sq.Eq{"p.author_id": authorID}
	if includeHidden {
		return Feed{
			where: byAuthor,
			match: func(p *models.Post) bool { return p.AuthorID == authorID },
		}
	}
	return Feed{
		where: sq.And{byAuthor, Visible(now)},
		match: func(p *models.Post) bool {
			return p.AuthorID == authorID && p.IsVisible(now)
		},
	}
}

// Page returns the SQL for one 1-based page of the feed, newest first.
// Pages below 1 are treated as the first page.
func (f Feed) Page(page int) (string, []any, error) {
	if page < 1 {
		page = 1
	}
	return posts().
		Where(f.where).
		OrderBy("p.pub_date DESC", "p.id DESC").
		Limit(PageSize).
		Offset(uint64((page - 1) * PageSize)).
		ToSql()
}

// Count returns the SQL counting all posts in the feed.
func (f Feed) Count() (string, []any, error) {
	return psql.Select("COUNT(*)").
		From("posts p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(f.where).
		ToSql()
}

// PostByID returns the SQL loading a single post regardless of visibility.
func PostByID(id int64) (string, []any, error) {
	return posts().Where(sq.Eq{"p.id": id}).ToSql()
}

// OwnedPostByID loads a post only if authorID wrote it. Used to
// pre-filter deletions so another author's post resolves to nothing.
func OwnedPostByID(id int64, authorID uuid.UUID) (string, []any, error) {
	return posts().Where(sq.Eq{"p.id": id, "p.author_id": authorID}).ToSql()
}

// ReportFilter narrows the admin post report.
type ReportFilter struct {
	// Limit keeps only the newest N posts; 0 means all.
	Limit uint64
	// Published, when set, keeps only posts with that is_published value.
	Published *bool
	// Search matches a case-insensitive substring of the title.
	Search string
}

// likeEscaper quotes LIKE wildcards so a search term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Report returns the posts for the admin report, newest first.
func Report(f ReportFilter) (string, []any, error) {
	b := posts().OrderBy("p.pub_date DESC", "p.id DESC")
	if f.Published != nil {
		b = b.Where(sq.Eq{"p.is_published": *f.Published})
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		b = b.Where(sq.ILike{"p.title": "%" + likeEscaper.Replace(term) + "%"})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	return b.ToSql()
}
