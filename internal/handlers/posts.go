// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"blogicum/internal/blog"
	"blogicum/internal/imaging"
	"blogicum/internal/models"
	"blogicum/internal/render"
	"blogicum/internal/session"
)

// Posts groups the handlers that create, edit and delete posts. All of
// them sit behind middleware.RequireAuth.
type Posts struct {
	*Base
}

// NewPosts creates a new Posts handler group.
func NewPosts(base *Base) *Posts {
	return &Posts{Base: base}
}

func postURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// notOwner is the single answer to an ownership failure on a post or
// comment: back to the post, with the reason in a flash message.
func (b *Base) notOwner(w http.ResponseWriter, r *http.Request, postID int64, what string) {
	b.flash(r, session.FlashError, fmt.Sprintf("You can only change your own %s.", what))
	redirect(w, r, postURL(postID))
}

// renderForm shows the post form. post is nil on the create page.
func (p *Posts) renderForm(w http.ResponseWriter, r *http.Request, form *render.Form, post *models.Post) {
	choices, err := p.svc.PostFormChoices(post)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	title, action := "New post", "/posts/create/"
	if post != nil {
		title, action = "Edit post", fmt.Sprintf("/posts/%d/edit/", post.ID)
	}

	p.page(w, r, "create", title, map[string]any{
		"Form":          form,
		"Choices":       choices,
		"Action":        action,
		"Post":          post,
		"Editing":       post != nil,
		"MaxImageBytes": imaging.MaxBytes,
	})
}

// CreateForm renders an empty post form, published and dated now.
func (p *Posts) CreateForm(w http.ResponseWriter, r *http.Request) {
	values := postValues("", "", time.Now(), nil, nil, true)
	p.renderForm(w, r, render.NewForm(values), nil)
}

// Create publishes a new post and sends the author to their profile.
func (p *Posts) Create(w http.ResponseWriter, r *http.Request) {
	in, fieldErrs, err := decodePost(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	form := render.NewForm(formValues(r))
	if len(fieldErrs) > 0 {
		form.SetErrors(fieldErrs)
		p.renderForm(w, r, form, nil)
		return
	}

	v := viewer(r)
	if _, err := p.svc.CreatePost(r.Context(), v, in); err != nil {
		if msgs, ok := validationErrors(err); ok {
			form.SetErrors(msgs)
			p.renderForm(w, r, form, nil)
			return
		}
		p.fail(w, r, err)
		return
	}

	p.flash(r, session.FlashSuccess, "Post saved.")
	redirect(w, r, profileURL(v.Username))
}

// EditForm renders the form for one of the viewer's posts.
func (p *Posts) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "post_id")
	if !ok {
		p.NotFound(w, r)
		return
	}

	post, err := p.svc.PostForEdit(viewer(r), id)
	if errors.Is(err, blog.ErrForbidden) {
		p.notOwner(w, r, id, "posts")
		return
	}
	if err != nil {
		p.fail(w, r, err)
		return
	}

	values := postValues(post.Title, post.Text, post.PubDate, post.LocationID, post.CategoryID, post.IsPublished)
	p.renderForm(w, r, render.NewForm(values), post)
}

// Edit saves the post form. Someone else's post is left untouched and
// the viewer is sent back to it.
func (p *Posts) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "post_id")
	if !ok {
		p.NotFound(w, r)
		return
	}

	v := viewer(r)
	post, err := p.svc.PostForEdit(v, id)
	if errors.Is(err, blog.ErrForbidden) {
		p.notOwner(w, r, id, "posts")
		return
	}
	if err != nil {
		p.fail(w, r, err)
		return
	}

	in, fieldErrs, err := decodePost(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	form := render.NewForm(formValues(r))
	if len(fieldErrs) > 0 {
		form.SetErrors(fieldErrs)
		p.renderForm(w, r, form, post)
		return
	}

	if _, err := p.svc.UpdatePost(r.Context(), v, id, in); err != nil {
		if msgs, ok := validationErrors(err); ok {
			form.SetErrors(msgs)
			p.renderForm(w, r, form, post)
			return
		}
		if errors.Is(err, blog.ErrForbidden) {
			p.notOwner(w, r, id, "posts")
			return
		}
		p.fail(w, r, err)
		return
	}

	p.flash(r, session.FlashSuccess, "Post updated.")
	redirect(w, r, postURL(id))
}

// DeleteConfirm asks the author to confirm deletion. Only the viewer's
// own posts are found; anyone else's is a 404.
func (p *Posts) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "post_id")
	if !ok {
		p.NotFound(w, r)
		return
	}

	post, err := p.svc.PostForDelete(viewer(r), id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.page(w, r, "delete", "Delete post", map[string]any{"Post": post})
}

// Delete removes the post, its comments and its image.
func (p *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "post_id")
	if !ok {
		p.NotFound(w, r)
		return
	}

	if err := p.svc.DeletePost(r.Context(), viewer(r), id); err != nil {
		p.fail(w, r, err)
		return
	}

	p.flash(r, session.FlashSuccess, "Post deleted.")
	redirect(w, r, "/")
}
