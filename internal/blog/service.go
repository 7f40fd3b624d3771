// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the blog's operations: feeds, post and comment
// lifecycles, profiles and registration. It enforces visibility and
// ownership and reports failures with the sentinel errors in errors.go.
// The HTTP layer and the admin CLI sit on top of it.
package blog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"blogicum/internal/models"
	"blogicum/internal/query"
)

// Users is the subset of store.UserStore the service needs.
type Users interface {
	FindByUsername(username string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(username, email, password string, superuser bool) (*models.User, error)
	UpdateProfile(u *models.User) error
}

// Categories is the subset of store.CategoryStore the service needs.
type Categories interface {
	FindBySlug(slug string) (*models.Category, error)
	FindByID(id int64) (*models.Category, error)
	ListPublished() ([]models.Category, error)
}

// Locations is the subset of store.LocationStore the service needs.
type Locations interface {
	FindByID(id int64) (*models.Location, error)
	List(publishedOnly bool) ([]models.Location, error)
}

// Posts is the subset of store.PostStore the service needs.
type Posts interface {
	Count(f query.Feed) (int, error)
	Page(f query.Feed, page int) ([]models.Post, error)
	FindByID(id int64) (*models.Post, error)
	FindOwned(id int64, authorID uuid.UUID) (*models.Post, error)
	Create(p *models.Post) error
	Update(p *models.Post) error
	Delete(id int64) (bool, error)
}

// Comments is the subset of store.CommentStore the service needs.
type Comments interface {
	ListByPost(postID int64) ([]models.Comment, error)
	FindInPost(postID, commentID int64) (*models.Comment, error)
	Create(c *models.Comment) error
	UpdateText(id int64, text string) error
	Delete(id int64) (bool, error)
}

// Images stores uploaded post images and returns their blob keys.
type Images interface {
	Save(ctx context.Context, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
}

// Viewer identifies who is making a request. The zero Viewer is anonymous.
type Viewer struct {
	ID       uuid.UUID
	Username string
}

// Authenticated reports whether the viewer is signed in.
func (v Viewer) Authenticated() bool {
	return v.ID != uuid.Nil
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Users      Users
	Categories Categories
	Locations  Locations
	Posts      Posts
	Comments   Comments
	Images     Images           // optional; uploads are rejected when nil
	Now        func() time.Time // defaults to time.Now
}

// Service implements the blog operations.
type Service struct {
	users      Users
	categories Categories
	locations  Locations
	posts      Posts
	comments   Comments
	images     Images
	now        func() time.Time
}

// New creates a Service.
func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:      d.Users,
		categories: d.Categories,
		locations:  d.Locations,
		posts:      d.Posts,
		comments:   d.Comments,
		images:     d.Images,
		now:        now,
	}
}
