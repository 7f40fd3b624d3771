// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"blogicum/internal/models"
	"blogicum/internal/store"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// usernameRe allows letters, digits and @ . + - _ characters.
var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

var usernameRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, models.MaxUsernameLen),
	validation.Match(usernameRe).Error("letters, digits and @/./+/-/_ only"),
}

// ProfileInput is the content of the profile form.
type ProfileInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterInput is the content of the registration form.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// ProfileForEdit returns the viewer's own account.
func (s *Service) ProfileForEdit(viewer Viewer) (*models.User, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.FindByID(viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// EditProfile updates the viewer's own profile. The target is always the
// viewer; no username from the request selects it.
func (s *Service) EditProfile(viewer Viewer, in ProfileInput) (*models.User, error) {
	u, err := s.ProfileForEdit(viewer)
	if err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	fe := fieldErrors{}
	if err := fe.merge(validation.ValidateStruct(&in,
		validation.Field(&in.Username, usernameRules...),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.FirstName, validation.RuneLength(0, 150)),
		validation.Field(&in.LastName, validation.RuneLength(0, 150)),
	)); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	u.Username = in.Username
	u.Email = in.Email
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	if err := s.users.UpdateProfile(u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fe.add("username", "a user with that username already exists")
			return nil, fe.err()
		}
		return nil, err
	}
	slog.Info("profile updated", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Register creates a regular account.
func (s *Service) Register(in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	fe := fieldErrors{}
	if err := fe.merge(validation.ValidateStruct(&in,
		validation.Field(&in.Username, usernameRules...),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.Password1, validation.Required, validation.RuneLength(MinPasswordLen, 0)),
		validation.Field(&in.Password2, validation.Required),
	)); err != nil {
		return nil, err
	}
	if in.Password2 != "" && in.Password1 != in.Password2 {
		fe.add("password2", "the two password fields didn't match")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	u, err := s.users.Create(in.Username, in.Email, in.Password1, false)
	if errors.Is(err, store.ErrDuplicate) {
		fe.add("username", "a user with that username already exists")
		return nil, fe.err()
	}
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}
