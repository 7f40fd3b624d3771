// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's reply under a post. AuthorID is nullable in the
// schema; comments written through the site always carry an author.
type Comment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"post_id"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`

	// AuthorUsername is joined from users; empty for orphaned comments.
	AuthorUsername string `json:"author_username"`
}

// OwnedBy reports whether userID wrote the comment.
func (c *Comment) OwnedBy(userID uuid.UUID) bool {
	return c.AuthorID != nil && userID != uuid.Nil && *c.AuthorID == userID
}

// Preview returns the first 50 runes of the text, used in admin listings.
func (c *Comment) Preview() string {
	r := []rune(c.Text)
	if len(r) <= 50 {
		return c.Text
	}
	return string(r[:50])
}
