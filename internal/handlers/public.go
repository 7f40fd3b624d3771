// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogicum/internal/query"
	"blogicum/internal/render"
)

// Public groups the read-only pages: the feeds, post detail and profiles.
type Public struct {
	*Base
}

// NewPublic creates a new Public handler group.
func NewPublic(base *Base) *Public {
	return &Public{Base: base}
}

// pageParam reads ?page=. ok is false for values that can never name a
// page, which are answered with 404.
func pageParam(r *http.Request) (int, bool) {
	page, err := query.ParsePage(r.URL.Query().Get("page"))
	return page, err == nil
}

// Index renders the public feed.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		p.NotFound(w, r)
		return
	}

	fp, err := p.svc.PublicFeed(page)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.page(w, r, "index", "", map[string]any{"Page": fp})
}

// Category renders the feed of one published category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		p.NotFound(w, r)
		return
	}

	cat, fp, err := p.svc.CategoryFeed(chi.URLParam(r, "category_slug"), page)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.page(w, r, "category", cat.Title, map[string]any{
		"Category": cat,
		"Page":     fp,
	})
}

// Profile renders a user's page with their posts.
func (p *Public) Profile(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		p.NotFound(w, r)
		return
	}

	v := viewer(r)
	author, fp, err := p.svc.AuthorFeed(chi.URLParam(r, "username"), v, page)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.page(w, r, "profile", "@"+author.Username, map[string]any{
		"Profile": author,
		"Page":    fp,
		"IsOwner": v.Authenticated() && v.ID == author.ID,
	})
}

// PostDetail renders a post with its comments and the comment form.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "post_id")
	if !ok {
		p.NotFound(w, r)
		return
	}
	p.renderDetail(w, r, id, render.NewForm(nil))
}

// renderDetail is shared with the comment handler, which re-renders the
// detail page when a new comment is rejected.
func (b *Base) renderDetail(w http.ResponseWriter, r *http.Request, id int64, form *render.Form) {
	post, comments, err := b.svc.PostDetail(id, viewer(r))
	if err != nil {
		b.fail(w, r, err)
		return
	}

	b.page(w, r, "detail", post.Title, map[string]any{
		"Post":     post,
		"Comments": comments,
		"Form":     form,
	})
}
