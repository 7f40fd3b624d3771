// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"blogicum/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

var categoryColumns = []string{
	"id", "title", "description", "slug", "is_published", "is_visible", "created_at",
}

func categoryFields(c *models.Category) []any {
	return []any{&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &c.IsVisible, &c.CreatedAt}
}

// queryCategories runs a select and scans every row. extra receives
// pointers for columns past the standard set.
func (s *CategoryStore) queryCategories(b sq.SelectBuilder, what string, extra func(*models.Category) []any) ([]models.Category, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", what, err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		dest := categoryFields(&c)
		if extra != nil {
			dest = append(dest, extra(&c)...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// List returns every category by title, with how many posts each holds.
func (s *CategoryStore) List() ([]models.Category, error) {
	cols := make([]string, 0, len(categoryColumns)+1)
	for _, c := range categoryColumns {
		cols = append(cols, "c."+c)
	}
	b := psql.Select(cols...).Column("COUNT(p.id) AS post_count").
		From("categories c").
		LeftJoin("posts p ON p.category_id = c.id").
		GroupBy("c.id").
		OrderBy("c.title")
	return s.queryCategories(b, "list categories", func(c *models.Category) []any {
		return []any{&c.PostCount}
	})
}

// ListPublished returns the categories offered in the post form.
func (s *CategoryStore) ListPublished() ([]models.Category, error) {
	b := psql.Select(categoryColumns...).From("categories").
		Where(sq.Eq{"is_published": true}).
		OrderBy("title")
	return s.queryCategories(b, "list published categories", nil)
}

func (s *CategoryStore) findOne(where sq.Sqlizer, what string) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", what, err)
	}
	var c models.Category
	err = s.db.QueryRow(query, args...).Scan(categoryFields(&c)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return &c, nil
}

// FindByID returns a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id int64) (*models.Category, error) {
	return s.findOne(sq.Eq{"id": id}, "find category by id")
}

// FindBySlug returns a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	return s.findOne(sq.Eq{"slug": slug}, "find category by slug")
}

// Create inserts a new category. Returns ErrDuplicate when the slug is taken.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	query, args, err := psql.Insert("categories").
		Columns("title", "description", "slug", "is_published", "is_visible").
		Values(c.Title, c.Description, c.Slug, c.IsPublished, c.IsVisible).
		Suffix("RETURNING " + strings.Join(categoryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create category: %w", err)
	}

	var created models.Category
	err = s.db.QueryRow(query, args...).Scan(categoryFields(&created)...)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &created, nil
}

// exec runs a write against one slug and reports whether a row matched.
func (s *CategoryStore) exec(b sq.Sqlizer, what string) (bool, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("build %s: %w", what, err)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", what, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetVisible shows or hides every post of a category from public feeds.
// Returns false when no category has the given slug.
func (s *CategoryStore) SetVisible(slug string, visible bool) (bool, error) {
	return s.exec(psql.Update("categories").Set("is_visible", visible).Where(sq.Eq{"slug": slug}),
		"set category visibility")
}

// Delete removes a category by slug. Posts keep existing with their
// category reference cleared. Returns false when nothing was deleted.
func (s *CategoryStore) Delete(slug string) (bool, error) {
	return s.exec(psql.Delete("categories").Where(sq.Eq{"slug": slug}), "delete category")
}
