// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"blogicum/internal/models"
)

// CommentStore handles comment queries.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.post_id, cm.author_id, cm.text, cm.created_at, COALESCE(u.username, '')
	FROM comments cm
	LEFT JOIN users u ON u.id = cm.author_id`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.AuthorUsername)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost returns a post's comments, oldest first.
func (s *CommentStore) ListByPost(postID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(commentSelect+`
		WHERE cm.post_id = $1
		ORDER BY cm.created_at ASC, cm.id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindInPost returns a comment only if it belongs to postID. Returns nil
// when the comment does not exist or sits under another post.
func (s *CommentStore) FindInPost(postID, commentID int64) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(commentSelect+`
		WHERE cm.id = $1 AND cm.post_id = $2
	`, commentID, postID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// Create inserts a comment and fills in its ID and created_at.
func (s *CommentStore) Create(c *models.Comment) error {
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.PostID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// UpdateText replaces a comment's text. created_at is never touched.
func (s *CommentStore) UpdateText(id int64, text string) error {
	_, err := s.db.Exec(`UPDATE comments SET text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment by ID. Returns false when no comment had it.
func (s *CommentStore) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
