// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogicum/internal/imaging"
	"blogicum/internal/models"
)

// PostInput is the validated content of the post form.
type PostInput struct {
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	PubDate     time.Time `json:"pub_date"`
	LocationID  *int64    `json:"location"`
	CategoryID  *int64    `json:"category"`
	IsPublished bool      `json:"is_published"`

	// Image is the raw upload; nil keeps the current image.
	Image []byte `json:"image"`
	// ClearImage removes the current image when no new one is uploaded.
	ClearImage bool `json:"image_clear"`
}

// FormChoices lists the categories and locations offered in the post form.
type FormChoices struct {
	Categories []models.Category
	Locations  []models.Location
}

// PostFormChoices loads the published categories and locations. When
// editing, current's own category and location are offered too even if
// they have since been unpublished, so saving the form keeps them.
func (s *Service) PostFormChoices(current *models.Post) (*FormChoices, error) {
	cats, err := s.categories.ListPublished()
	if err != nil {
		return nil, err
	}
	locs, err := s.locations.List(true)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &FormChoices{Categories: cats, Locations: locs}, nil
	}

	if id := current.CategoryID; id != nil && !slices.ContainsFunc(cats, func(c models.Category) bool { return c.ID == *id }) {
		cat, err := s.categories.FindByID(*id)
		if err != nil {
			return nil, fmt.Errorf("load category: %w", err)
		}
		if cat != nil {
			cats = append(cats, *cat)
		}
	}
	if id := current.LocationID; id != nil && !slices.ContainsFunc(locs, func(l models.Location) bool { return l.ID == *id }) {
		loc, err := s.locations.FindByID(*id)
		if err != nil {
			return nil, fmt.Errorf("load location: %w", err)
		}
		if loc != nil {
			locs = append(locs, *loc)
		}
	}
	return &FormChoices{Categories: cats, Locations: locs}, nil
}

// sameID reports whether two optional references point at the same row.
func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// validatePost checks the form fields and that referenced rows exist.
// current is the post being edited, nil on create. Its existing category
// and location stay acceptable after an unpublish.
func (s *Service) validatePost(in *PostInput, current *models.Post) error {
	in.Title = strings.TrimSpace(in.Title)
	fe := fieldErrors{}
	err := fe.merge(validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, models.MaxTitleLen)),
		validation.Field(&in.Text, validation.Required),
		validation.Field(&in.PubDate, validation.Required),
	))
	if err != nil {
		return err
	}
	if in.CategoryID != nil {
		cat, err := s.categories.FindByID(*in.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		kept := current != nil && sameID(in.CategoryID, current.CategoryID)
		if cat == nil || (!cat.IsPublished && !kept) {
			fe.add("category", "select a valid category")
		}
	}
	if in.LocationID != nil {
		loc, err := s.locations.FindByID(*in.LocationID)
		if err != nil {
			return fmt.Errorf("check location: %w", err)
		}
		kept := current != nil && sameID(in.LocationID, current.LocationID)
		if loc == nil || (!loc.IsPublished && !kept) {
			fe.add("location", "select a valid location")
		}
	}
	if len(in.Image) > 0 && s.images == nil {
		fe.add("image", "image uploads are disabled")
	}
	return fe.err()
}

// saveImage stores a new upload, mapping undecodable data to a field error.
func (s *Service) saveImage(ctx context.Context, data []byte) (*string, error) {
	key, err := s.images.Save(ctx, data)
	if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
		fe := fieldErrors{}
		fe.add("image", err.Error())
		return nil, fe.err()
	}
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	return &key, nil
}

// removeImage deletes a blob that is no longer referenced. Failures are
// logged only: the row change already happened.
func (s *Service) removeImage(ctx context.Context, key *string) {
	if key == nil || s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, *key); err != nil {
		slog.Warn("failed to remove post image", "key", *key, "error", err)
	}
}

// CreatePost publishes a new post authored by viewer.
func (s *Service) CreatePost(ctx context.Context, viewer Viewer, in PostInput) (*models.Post, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if err := s.validatePost(&in, nil); err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:       in.Title,
		Text:        in.Text,
		PubDate:     in.PubDate,
		AuthorID:    viewer.ID,
		LocationID:  in.LocationID,
		CategoryID:  in.CategoryID,
		IsPublished: in.IsPublished,
	}
	if len(in.Image) > 0 {
		key, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = key
	}

	if err := s.posts.Create(p); err != nil {
		s.removeImage(ctx, p.Image)
		return nil, err
	}
	slog.Info("post created", "post_id", p.ID, "author", viewer.Username)
	return p, nil
}

// PostForEdit returns the post the viewer wants to edit. A post owned by
// someone else is ErrForbidden.
func (s *Service) PostForEdit(viewer Viewer, id int64) (*models.Post, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthenticated
	}
	p, err := s.posts.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !p.OwnedBy(viewer.ID) {
		return nil, ErrForbidden
	}
	return p, nil
}

// UpdatePost applies the form to a post owned by viewer. The post is left
// untouched on any error.
func (s *Service) UpdatePost(ctx context.Context, viewer Viewer, id int64, in PostInput) (*models.Post, error) {
	p, err := s.PostForEdit(viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.validatePost(&in, p); err != nil {
		return nil, err
	}

	old := p.Image
	p.Title = in.Title
	p.Text = in.Text
	p.PubDate = in.PubDate
	p.LocationID = in.LocationID
	p.CategoryID = in.CategoryID
	p.IsPublished = in.IsPublished

	switch {
	case len(in.Image) > 0:
		key, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = key
	case in.ClearImage:
		p.Image = nil
	}

	if err := s.posts.Update(p); err != nil {
		if p.Image != old {
			s.removeImage(ctx, p.Image)
		}
		return nil, err
	}
	if p.Image != old {
		s.removeImage(ctx, old)
	}
	slog.Info("post updated", "post_id", p.ID, "author", viewer.Username)
	return p, nil
}

// PostForDelete returns the post for the delete confirmation page. Only
// the viewer's own posts are candidates, so anyone else's is ErrNotFound.
func (s *Service) PostForDelete(viewer Viewer, id int64) (*models.Post, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthenticated
	}
	p, err := s.posts.FindOwned(id, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// DeletePost removes one of the viewer's posts together with its
// comments and image.
func (s *Service) DeletePost(ctx context.Context, viewer Viewer, id int64) error {
	p, err := s.PostForDelete(viewer, id)
	if err != nil {
		return err
	}
	ok, err := s.posts.Delete(p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.removeImage(ctx, p.Image)
	slog.Info("post deleted", "post_id", p.ID, "author", viewer.Username)
	return nil
}
