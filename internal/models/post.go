// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Field limits shared by validation and the schema.
const (
	MaxTitleLen    = 256
	MaxUsernameLen = 150
)

// Post is a dated blog entry. A post with a future PubDate is scheduled:
// it becomes public once the clock passes PubDate, with no background job.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	PubDate     time.Time `json:"pub_date"`
	AuthorID    uuid.UUID `json:"author_id"`
	LocationID  *int64    `json:"location_id,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Image       *string   `json:"image,omitempty"` // blob store key
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined fields populated by store methods.
	Author       PostAuthor `json:"author"`
	Category     *Category  `json:"category,omitempty"`
	Location     *Location  `json:"location,omitempty"`
	CommentCount int        `json:"comment_count"`
}

// PostAuthor is the slice of the author's profile shown next to a post.
type PostAuthor struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// IsVisible reports whether the post is publicly viewable at now:
// published, not scheduled for later, and not filed under a hidden
// category. Category must be loaded for a post that has CategoryID set.
func (p *Post) IsVisible(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	if p.CategoryID != nil && (p.Category == nil || !p.Category.IsVisible) {
		return false
	}
	return true
}

// IsScheduled reports whether the post is published but dated in the future.
func (p *Post) IsScheduled(now time.Time) bool {
	return p.IsPublished && p.PubDate.After(now)
}

// OwnedBy reports whether userID is the post's author.
func (p *Post) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && p.AuthorID == userID
}
