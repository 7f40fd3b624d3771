// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"blogicum/internal/blog"
	"blogicum/internal/middleware"
	"blogicum/internal/render"
	"blogicum/internal/session"
)

// Profile handles editing the signed-in user's own profile.
type Profile struct {
	*Base
}

// NewProfile creates a new Profile handler group.
func NewProfile(base *Base) *Profile {
	return &Profile{Base: base}
}

// EditForm renders the profile form filled with the current values.
func (p *Profile) EditForm(w http.ResponseWriter, r *http.Request) {
	u, err := p.svc.ProfileForEdit(viewer(r))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	form := render.NewForm(url.Values{
		"username":   {u.Username},
		"email":      {u.Email},
		"first_name": {u.FirstName},
		"last_name":  {u.LastName},
	})
	p.page(w, r, "user", "Edit profile", map[string]any{"Form": form})
}

// Edit saves the profile. The session follows a username change so the
// navigation links stay correct.
func (p *Profile) Edit(w http.ResponseWriter, r *http.Request) {
	var f profileForm
	if _, err := decodeForm(r, &f); err != nil {
		p.fail(w, r, err)
		return
	}

	u, err := p.svc.EditProfile(viewer(r), blog.ProfileInput{
		Username:  f.Username,
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	})
	if err != nil {
		if msgs, ok := validationErrors(err); ok {
			form := render.NewForm(formValues(r))
			form.SetErrors(msgs)
			p.page(w, r, "user", "Edit profile", map[string]any{"Form": form})
			return
		}
		p.fail(w, r, err)
		return
	}

	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.Username != u.Username {
		sess.Username = u.Username
		if err := p.sessions.Update(r.Context(), r, sess); err != nil {
			slog.Warn("session username update failed", "error", err)
		}
	}

	p.flash(r, session.FlashSuccess, "Profile saved.")
	redirect(w, r, profileURL(u.Username))
}
