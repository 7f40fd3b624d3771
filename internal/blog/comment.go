// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogicum/internal/models"
)

// CommentInput is the content of the comment form.
type CommentInput struct {
	Text string `json:"text"`
}

func validateComment(in *CommentInput) error {
	in.Text = strings.TrimSpace(in.Text)
	fe := fieldErrors{}
	if err := fe.merge(validation.ValidateStruct(in,
		validation.Field(&in.Text, validation.Required),
	)); err != nil {
		return err
	}
	return fe.err()
}

// AddComment attaches a comment by viewer to a post. The post must be one
// the viewer can see; commenting on hidden posts is reserved to their author.
func (s *Service) AddComment(viewer Viewer, postID int64, in CommentInput) (*models.Comment, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthenticated
	}
	p, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil || !s.canSee(p, viewer) {
		return nil, ErrNotFound
	}
	if err := validateComment(&in); err != nil {
		return nil, err
	}

	author := viewer.ID
	c := &models.Comment{PostID: p.ID, AuthorID: &author, Text: in.Text, AuthorUsername: viewer.Username}
	if err := s.comments.Create(c); err != nil {
		return nil, err
	}
	slog.Info("comment added", "comment_id", c.ID, "post_id", p.ID, "author", viewer.Username)
	return c, nil
}

// CommentForEdit returns a comment of postID that viewer wrote. A comment
// that is missing or belongs to another post is ErrNotFound; one written
// by someone else is ErrForbidden.
func (s *Service) CommentForEdit(viewer Viewer, postID, commentID int64) (*models.Comment, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthenticated
	}
	c, err := s.comments.FindInPost(postID, commentID)
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if !c.OwnedBy(viewer.ID) {
		return nil, ErrForbidden
	}
	return c, nil
}

// EditComment replaces the text of viewer's comment. created_at stays.
func (s *Service) EditComment(viewer Viewer, postID, commentID int64, in CommentInput) (*models.Comment, error) {
	c, err := s.CommentForEdit(viewer, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := validateComment(&in); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateText(c.ID, in.Text); err != nil {
		return nil, err
	}
	c.Text = in.Text
	slog.Info("comment edited", "comment_id", c.ID, "post_id", postID, "author", viewer.Username)
	return c, nil
}

// DeleteComment removes viewer's comment. Same ownership rule as EditComment.
func (s *Service) DeleteComment(viewer Viewer, postID, commentID int64) error {
	c, err := s.CommentForEdit(viewer, postID, commentID)
	if err != nil {
		return err
	}
	ok, err := s.comments.Delete(c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	slog.Info("comment deleted", "comment_id", c.ID, "post_id", postID, "author", viewer.Username)
	return nil
}
