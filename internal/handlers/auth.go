// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/session"
	"coinpress/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Manager
	users    UserStore
	issuer   string // shown in authenticator apps
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Manager, users UserStore, issuer string) *Auth {
	return &Auth{sessions: sessions, users: users, issuer: issuer}
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Register creates a reader account and signs it in. Accounts created here
// are never admins.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	errs := fieldErrors{}
	if !validUsername(req.Username) {
		errs.add("username", "must be 3-50 letters, digits, dots, hyphens or underscores")
	}
	errs.email("email", req.Email)
	errs.password("password", req.Password)
	errs.maxLen("displayName", req.DisplayName, maxDisplayNameLen)
	if !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	user, err := a.users.Create(r.Context(), req.Username, req.Email, req.Password, req.DisplayName, false)
	if errors.Is(err, store.ErrDuplicate) {
		respond.Conflict(w, "Username or email is already registered")
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}

	token, ok := a.signIn(w, r, user)
	if !ok {
		return
	}
	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	respond.Created(w, authResponse{User: user, Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login checks credentials (and the TOTP code when 2FA is enabled) and
// issues a token in both the body and the token cookie.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		respond.Unauthorized(w, "Invalid email or password")
		return
	}

	if user.Needs2FA() {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			respond.Error(w, http.StatusUnauthorized, "totp_required", "A two-factor code is required", nil)
			return
		}
		if !totp.Validate(code, *user.TOTPSecret) {
			respond.Error(w, http.StatusUnauthorized, "invalid_totp", "Invalid two-factor code", nil)
			return
		}
	}

	token, ok := a.signIn(w, r, user)
	if !ok {
		return
	}
	slog.Info("user logged in", "user_id", user.ID)
	respond.OK(w, authResponse{User: user, Token: token})
}

func (a *Auth) signIn(w http.ResponseWriter, r *http.Request, user *models.User) (string, bool) {
	token, _, err := a.sessions.Issue(user.ID, user.IsAdmin)
	if err != nil {
		respond.InternalError(w, r, err)
		return "", false
	}
	a.sessions.SetCookie(w, token)
	return token, true
}

// Logout revokes the current token and clears the cookie. It succeeds for
// anonymous callers too.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := middleware.ClaimsFromCtx(r.Context()); claims != nil {
		if err := a.sessions.Revoke(r.Context(), claims); err != nil {
			slog.Error("token revoke failed", "error", err)
		}
	}
	a.sessions.ClearCookie(w)
	respond.OK(w, respond.Message{Message: "Logged out"})
}

// Me returns the current user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, middleware.UserFromCtx(r.Context()))
}

type profileRequest struct {
	DisplayName     *string `json:"displayName"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"currentPassword"`
}

// UpdateProfile changes the current user's display name, email or
// password. Email and password changes require the current password.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	upd := store.ProfileUpdate{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		errs.maxLen("displayName", name, maxDisplayNameLen)
		upd.DisplayName = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		errs.email("email", email)
		upd.Email = &email
	}
	if req.Password != nil {
		errs.password("password", *req.Password)
		upd.Password = req.Password
	}
	if !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	if (upd.Email != nil || upd.Password != nil) && !a.users.CheckPassword(user, req.CurrentPassword) {
		respond.ValidationError(w, map[string]string{"currentPassword": "is incorrect"})
		return
	}

	updated, err := a.users.UpdateProfile(r.Context(), user.ID, upd)
	if errors.Is(err, store.ErrDuplicate) {
		respond.Conflict(w, "Email is already registered")
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if updated == nil {
		respond.NotFound(w, "User not found")
		return
	}
	respond.OK(w, updated)
}

type twoFASetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qrCode"` // base64 PNG
}

// TwoFASetup generates and stores a new TOTP secret. 2FA stays disabled
// until the first code is confirmed with TwoFAEnable.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user.TOTPEnabled {
		respond.Conflict(w, "Two-factor authentication is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}

	if err := a.users.SetTOTPSecret(r.Context(), user.ID, key.Secret()); err != nil {
		respond.InternalError(w, r, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}

	respond.OK(w, twoFASetupResponse{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type codeRequest struct {
	Code string `json:"code"`
}

// TwoFAEnable confirms the pending secret with a first valid code.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user.TOTPEnabled {
		respond.Conflict(w, "Two-factor authentication is already enabled")
		return
	}
	if user.TOTPSecret == nil {
		respond.BadRequest(w, "Run two-factor setup first")
		return
	}

	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respond.ValidationError(w, map[string]string{"code": "is invalid"})
		return
	}

	if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
		respond.InternalError(w, r, err)
		return
	}
	slog.Info("2fa enabled", "user_id", user.ID)
	respond.OK(w, respond.Message{Message: "Two-factor authentication enabled"})
}

// TwoFADisable turns 2FA off after checking a current code.
func (a *Auth) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if !user.Needs2FA() {
		respond.BadRequest(w, "Two-factor authentication is not enabled")
		return
	}

	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respond.ValidationError(w, map[string]string{"code": "is invalid"})
		return
	}

	if err := a.users.ResetTOTP(r.Context(), user.ID); err != nil {
		respond.InternalError(w, r, err)
		return
	}
	slog.Info("2fa disabled", "user_id", user.ID)
	respond.OK(w, respond.Message{Message: "Two-factor authentication disabled"})
}
