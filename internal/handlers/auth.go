// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blogicum/internal/blog"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/render"
	"blogicum/internal/session"
	"blogicum/internal/store"
)

// totpIssuer is the account label shown in authenticator apps.
const totpIssuer = "Blogicum"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	*Base
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(base *Base, userStore *store.UserStore) *Auth {
	return &Auth{Base: base, userStore: userStore}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.SessionFromCtx(r.Context()).Authenticated() {
		redirect(w, r, safeNext(next, "/"))
		return
	}

	a.page(w, r, "login", "Log in", map[string]any{"Next": next})
}

// LoginSubmit checks the credentials. Users with TOTP enabled get a
// half signed-in session and are sent to the code page.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"), "/")

	user, err := a.userStore.FindByUsername(username)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.page(w, r, "login", "Log in", map[string]any{
			"Error":    "Please enter a correct username and password.",
			"Next":     r.FormValue("next"),
			"Username": username,
		})
		return
	}

	// Drop any session left over from an earlier login.
	if old := middleware.SessionFromCtx(r.Context()); old != nil {
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Warn("destroy previous session failed", "error", err)
		}
	}

	needs2FA := user.Needs2FA()
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		TwoFADone: !needs2FA,
	})
	if err != nil {
		a.fail(w, r, fmt.Errorf("create session: %w", err))
		return
	}

	if needs2FA {
		redirect(w, r, middleware.TwoFAVerifyPath+"?next="+url.QueryEscape(next))
		return
	}
	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	redirect(w, r, next)
}

// Logout destroys the session and returns to the public feed.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	redirect(w, r, "/")
}

// RegistrationPage renders the sign-up form.
func (a *Auth) RegistrationPage(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, "registration", "Sign up", map[string]any{"Form": render.NewForm(nil)})
}

// RegistrationSubmit creates the account. The new user logs in
// separately.
func (a *Auth) RegistrationSubmit(w http.ResponseWriter, r *http.Request) {
	var f registerForm
	if _, err := decodeForm(r, &f); err != nil {
		a.fail(w, r, err)
		return
	}

	_, err := a.svc.Register(blog.RegisterInput{
		Username:  f.Username,
		Email:     f.Email,
		Password1: f.Password1,
		Password2: f.Password2,
	})
	if err != nil {
		if msgs, ok := validationErrors(err); ok {
			form := render.NewForm(formValues(r))
			form.SetErrors(msgs)
			a.page(w, r, "registration", "Sign up", map[string]any{"Form": form})
			return
		}
		a.fail(w, r, err)
		return
	}

	redirect(w, r, "/")
}

// currentUser loads the account behind the session. A session whose
// account was deleted is ErrUnauthenticated.
func (a *Auth) currentUser(r *http.Request) (*models.User, error) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return nil, blog.ErrUnauthenticated
	}
	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, blog.ErrUnauthenticated
	}
	return user, nil
}

// qrData renders the otpauth URL of a secret as a PNG data URI.
func qrData(username, secret string) (template.URL, error) {
	label := url.PathEscape(totpIssuer + ":" + username)
	v := url.Values{"secret": {secret}, "issuer": {totpIssuer}}
	png, err := qrcode.Encode("otpauth://totp/"+label+"?"+v.Encode(), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

// setupPage shows the QR code for the user's pending secret.
func (a *Auth) setupPage(w http.ResponseWriter, r *http.Request, user *models.User, errMsg string) {
	qr, err := qrData(user.Username, *user.TOTPSecret)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.page(w, r, "2fa_setup", "Two-factor authentication", map[string]any{
		"QR":     qr,
		"Secret": *user.TOTPSecret,
		"Error":  errMsg,
	})
}

// TwoFASetupPage shows the 2FA status. Users without 2FA get a fresh
// secret on every visit until they confirm one with a code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if user.TOTPEnabled {
		a.page(w, r, "2fa_setup", "Two-factor authentication", map[string]any{"Enabled": true})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		a.fail(w, r, fmt.Errorf("generate totp key: %w", err))
		return
	}
	secret := key.Secret()
	if err := a.userStore.SetTOTPSecret(user.ID, secret); err != nil {
		a.fail(w, r, err)
		return
	}
	user.TOTPSecret = &secret

	a.setupPage(w, r, user, "")
}

// TwoFASetupSubmit turns 2FA on once the user proves the app works.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if user.TOTPEnabled || user.TOTPSecret == nil {
		redirect(w, r, "/auth/2fa/setup/")
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.setupPage(w, r, user, "Invalid code. Please try again.")
		return
	}

	if err := a.userStore.EnableTOTP(user.ID); err != nil {
		a.fail(w, r, err)
		return
	}
	slog.Info("2fa enabled", "user_id", user.ID)
	a.flash(r, session.FlashSuccess, "Two-factor authentication is on.")
	redirect(w, r, "/auth/2fa/setup/")
}

// TwoFADisable turns 2FA off and forgets the secret.
func (a *Auth) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if err := a.userStore.ResetTOTP(sess.UserID); err != nil {
		a.fail(w, r, err)
		return
	}
	slog.Info("2fa disabled", "user_id", sess.UserID)
	a.flash(r, session.FlashSuccess, "Two-factor authentication is off.")
	redirect(w, r, "/auth/2fa/setup/")
}

// TwoFAVerifyPage renders the code entry form of a half signed-in user.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.SessionFromCtx(r.Context()).Authenticated() {
		redirect(w, r, safeNext(next, "/"))
		return
	}
	a.page(w, r, "2fa_verify", "Two-factor authentication", map[string]any{"Next": next})
}

// TwoFAVerifySubmit validates the TOTP code and completes the login.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	next := safeNext(r.FormValue("next"), "/")

	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	// A user who turned 2FA off in another session passes straight through.
	if user.Needs2FA() && !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.page(w, r, "2fa_verify", "Two-factor authentication", map[string]any{
			"Error": "Invalid code. Please try again.",
			"Next":  r.FormValue("next"),
		})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		a.fail(w, r, fmt.Errorf("update session: %w", err))
		return
	}
	slog.Info("user logged in", "user_id", user.ID, "username", user.Username, "2fa", true)
	redirect(w, r, next)
}
