// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"errors"
	"fmt"

	"blogicum/internal/models"
	"blogicum/internal/query"
)

// FeedPage is one page of a post listing.
type FeedPage struct {
	Posts      []models.Post
	Pagination query.Pagination
}

// feed counts the feed, validates page against it and loads that page.
// A page past the end is ErrNotFound; an empty feed has one empty page.
func (s *Service) feed(f query.Feed, page int) (*FeedPage, error) {
	total, err := s.posts.Count(f)
	if err != nil {
		return nil, err
	}
	pg, err := query.NewPagination(page, total)
	if errors.Is(err, query.ErrInvalidPage) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Page(f, page)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Posts: posts, Pagination: pg}, nil
}

// PublicFeed returns a page of publicly visible posts.
func (s *Service) PublicFeed(page int) (*FeedPage, error) {
	return s.feed(query.PublicFeed(s.now()), page)
}

// CategoryFeed returns a page of the visible posts filed under slug.
// An unknown or unpublished category is ErrNotFound.
func (s *Service) CategoryFeed(slug string, page int) (*models.Category, *FeedPage, error) {
	cat, err := s.categories.FindBySlug(slug)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve category: %w", err)
	}
	if cat == nil || !cat.IsPublished {
		return nil, nil, ErrNotFound
	}
	fp, err := s.feed(query.CategoryFeed(cat.ID, s.now()), page)
	if err != nil {
		return nil, nil, err
	}
	return cat, fp, nil
}

// AuthorFeed returns a page of username's posts. The profile owner sees
// drafts, scheduled posts and posts in hidden categories; everyone else
// sees only publicly visible posts.
func (s *Service) AuthorFeed(username string, viewer Viewer, page int) (*models.User, *FeedPage, error) {
	author, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve author: %w", err)
	}
	if author == nil {
		return nil, nil, ErrNotFound
	}
	owner := viewer.Authenticated() && viewer.ID == author.ID
	fp, err := s.feed(query.AuthorFeed(author.ID, owner, s.now()), page)
	if err != nil {
		return nil, nil, err
	}
	return author, fp, nil
}

// PostDetail returns a post with its comments, oldest first. Posts that
// are not publicly visible are returned only to their author; anyone
// else gets ErrNotFound.
func (s *Service) PostDetail(id int64, viewer Viewer) (*models.Post, []models.Comment, error) {
	p, err := s.posts.FindByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil || !s.canSee(p, viewer) {
		return nil, nil, ErrNotFound
	}
	comments, err := s.comments.ListByPost(p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load comments: %w", err)
	}
	return p, comments, nil
}

// canSee is the single-post visibility rule shared by detail and commenting.
func (s *Service) canSee(p *models.Post, viewer Viewer) bool {
	return p.IsVisible(s.now()) || p.OwnedBy(viewer.ID)
}
