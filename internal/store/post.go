// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"blogicum/internal/models"
	"blogicum/internal/query"
)

// PostStore handles post queries. Listing SQL is built by package query;
// this store only executes it and scans the rows.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanPost scans a row selected with query.PostColumns.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p                          models.Post
		catTitle, catSlug, catDesc sql.NullString
		catPublished, catVisible   sql.NullBool
		locName                    sql.NullString
		locPublished               sql.NullBool
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Text, &p.PubDate, &p.AuthorID,
		&p.LocationID, &p.CategoryID, &p.Image, &p.IsPublished, &p.CreatedAt,
		&p.Author.Username, &p.Author.FirstName, &p.Author.LastName,
		&catTitle, &catSlug, &catDesc, &catPublished, &catVisible,
		&locName, &locPublished,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	if p.CategoryID != nil {
		p.Category = &models.Category{
			ID:          *p.CategoryID,
			Title:       catTitle.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
			IsPublished: catPublished.Bool,
			IsVisible:   catVisible.Bool,
		}
	}
	if p.LocationID != nil {
		p.Location = &models.Location{
			ID:          *p.LocationID,
			Name:        locName.String,
			IsPublished: locPublished.Bool,
		}
	}
	return &p, nil
}

func (s *PostStore) queryPosts(sqlStr string, args []any) ([]models.Post, error) {
	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Count returns the number of posts in a feed.
func (s *PostStore) Count(f query.Feed) (int, error) {
	sqlStr, args, err := f.Count()
	if err != nil {
		return 0, fmt.Errorf("build post count: %w", err)
	}
	var total int
	if err := s.db.QueryRow(sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

// Page returns one page of a feed, newest first.
func (s *PostStore) Page(f query.Feed, page int) ([]models.Post, error) {
	sqlStr, args, err := f.Page(page)
	if err != nil {
		return nil, fmt.Errorf("build post page: %w", err)
	}
	items, err := s.queryPosts(sqlStr, args)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return items, nil
}

// FindByID returns a post with its author, category and location,
// regardless of visibility. Returns nil if not found.
func (s *PostStore) FindByID(id int64) (*models.Post, error) {
	sqlStr, args, err := query.PostByID(id)
	if err != nil {
		return nil, fmt.Errorf("build post query: %w", err)
	}
	return s.findOne(sqlStr, args)
}

// FindOwned returns the post only if authorID wrote it. Returns nil otherwise.
func (s *PostStore) FindOwned(id int64, authorID uuid.UUID) (*models.Post, error) {
	sqlStr, args, err := query.OwnedPostByID(id, authorID)
	if err != nil {
		return nil, fmt.Errorf("build post query: %w", err)
	}
	return s.findOne(sqlStr, args)
}

func (s *PostStore) findOne(sqlStr string, args []any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// Create inserts a new post and fills in its ID and created_at.
func (s *PostStore) Create(p *models.Post) error {
	err := s.db.QueryRow(`
		INSERT INTO posts (title, text, pub_date, author_id, location_id, category_id, image, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.Title, p.Text, p.PubDate, p.AuthorID, p.LocationID, p.CategoryID, p.Image, p.IsPublished,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update saves the editable fields of a post. The author never changes.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts
		SET title = $1, text = $2, pub_date = $3, location_id = $4, category_id = $5,
		    image = $6, is_published = $7
		WHERE id = $8
	`, p.Title, p.Text, p.PubDate, p.LocationID, p.CategoryID, p.Image, p.IsPublished, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post and, through the foreign key, its comments.
// Returns false when no post had the given ID.
func (s *PostStore) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Report returns the posts for the admin report, newest first, narrowed
// by f.
func (s *PostStore) Report(f query.ReportFilter) ([]models.Post, error) {
	sqlStr, args, err := query.Report(f)
	if err != nil {
		return nil, fmt.Errorf("build post report: %w", err)
	}
	items, err := s.queryPosts(sqlStr, args)
	if err != nil {
		return nil, fmt.Errorf("post report: %w", err)
	}
	return items, nil
}

// SetPublished switches a post on or off. Returns false when no post had
// the given ID.
func (s *PostStore) SetPublished(id int64, published bool) (bool, error) {
	return s.setField(id, "is_published", published)
}

// SetCategory files a post under categoryID, or clears it when nil.
func (s *PostStore) SetCategory(id int64, categoryID *int64) (bool, error) {
	return s.setField(id, "category_id", categoryID)
}

// SetLocation moves a post to locationID, or clears it when nil.
func (s *PostStore) SetLocation(id int64, locationID *int64) (bool, error) {
	return s.setField(id, "location_id", locationID)
}

// SetAuthor hands a post over to another user.
func (s *PostStore) SetAuthor(id int64, authorID uuid.UUID) (bool, error) {
	return s.setField(id, "author_id", authorID)
}

func (s *PostStore) setField(id int64, column string, value any) (bool, error) {
	sqlStr, args, err := psql.Update("posts").
		Set(column, value).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build post update: %w", err)
	}
	res, err := s.db.Exec(sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("update post %s: %w", column, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
