// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"blogicum/internal/blog"
	"blogicum/internal/render"
	"blogicum/internal/session"
)

// Comments groups the comment handlers. All of them require a signed-in
// user.
type Comments struct {
	*Base
}

// NewComments creates a new Comments handler group.
func NewComments(base *Base) *Comments {
	return &Comments{Base: base}
}

// commentIDs reads {post_id} and {comment_id}.
func commentIDs(r *http.Request) (postID, commentID int64, ok bool) {
	postID, ok = idParam(r, "post_id")
	if !ok {
		return 0, 0, false
	}
	commentID, ok = idParam(r, "comment_id")
	return postID, commentID, ok
}

// Add posts a comment. A rejected comment re-renders the post page with
// the error under the form.
func (c *Comments) Add(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "post_id")
	if !ok {
		c.NotFound(w, r)
		return
	}

	var f commentForm
	if _, err := decodeForm(r, &f); err != nil {
		c.fail(w, r, err)
		return
	}

	if _, err := c.svc.AddComment(viewer(r), postID, blog.CommentInput{Text: f.Text}); err != nil {
		if msgs, ok := validationErrors(err); ok {
			form := render.NewForm(formValues(r))
			form.SetErrors(msgs)
			c.renderDetail(w, r, postID, form)
			return
		}
		c.fail(w, r, err)
		return
	}

	redirect(w, r, postURL(postID))
}

// EditForm renders the edit form for one of the viewer's comments.
func (c *Comments) EditForm(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		c.NotFound(w, r)
		return
	}

	comment, err := c.svc.CommentForEdit(viewer(r), postID, commentID)
	if errors.Is(err, blog.ErrForbidden) {
		c.notOwner(w, r, postID, "comments")
		return
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.page(w, r, "comment", "Edit comment", map[string]any{
		"Comment": comment,
		"Form":    render.NewForm(url.Values{"text": {comment.Text}}),
	})
}

// Edit saves a comment.
func (c *Comments) Edit(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		c.NotFound(w, r)
		return
	}

	var f commentForm
	if _, err := decodeForm(r, &f); err != nil {
		c.fail(w, r, err)
		return
	}

	v := viewer(r)
	_, err := c.svc.EditComment(v, postID, commentID, blog.CommentInput{Text: f.Text})
	switch {
	case err == nil:
		c.flash(r, session.FlashSuccess, "Comment updated.")
		redirect(w, r, "/")
	case errors.Is(err, blog.ErrForbidden):
		c.notOwner(w, r, postID, "comments")
	default:
		msgs, ok := validationErrors(err)
		if !ok {
			c.fail(w, r, err)
			return
		}
		comment, err := c.svc.CommentForEdit(v, postID, commentID)
		if err != nil {
			c.fail(w, r, err)
			return
		}
		form := render.NewForm(formValues(r))
		form.SetErrors(msgs)
		c.page(w, r, "comment", "Edit comment", map[string]any{
			"Comment": comment,
			"Form":    form,
		})
	}
}

// DeleteConfirm asks the author to confirm deleting a comment.
func (c *Comments) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		c.NotFound(w, r)
		return
	}

	comment, err := c.svc.CommentForEdit(viewer(r), postID, commentID)
	if errors.Is(err, blog.ErrForbidden) {
		c.notOwner(w, r, postID, "comments")
		return
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.page(w, r, "comment", "Delete comment", map[string]any{
		"Comment":  comment,
		"Deleting": true,
	})
}

// Delete removes a comment.
func (c *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		c.NotFound(w, r)
		return
	}

	err := c.svc.DeleteComment(viewer(r), postID, commentID)
	if errors.Is(err, blog.ErrForbidden) {
		c.notOwner(w, r, postID, "comments")
		return
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.flash(r, session.FlashSuccess, "Comment deleted.")
	redirect(w, r, postURL(postID))
}
