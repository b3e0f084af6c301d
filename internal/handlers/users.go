// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/store"
)

// Users groups the admin user management handlers.
type Users struct {
	users UserStore
}

// NewUsers creates a new Users handler group.
func NewUsers(users UserStore) *Users {
	return &Users{users: users}
}

// List returns a page of users.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.users.List(r.Context(), page)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.OK(w, userList{Users: orEmpty(users), Pagination: models.NewPagination(page, total)})
}

type setAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

// SetAdmin grants or revokes admin rights. Admins cannot demote themselves.
func (h *Users) SetAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req setAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsAdmin == nil {
		respond.ValidationError(w, map[string]string{"isAdmin": "is required"})
		return
	}

	current := middleware.UserFromCtx(r.Context())
	if current.ID == id && !*req.IsAdmin {
		respond.BadRequest(w, "You cannot remove your own admin rights")
		return
	}

	found, err := h.users.SetAdmin(r.Context(), id, *req.IsAdmin)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if !found {
		respond.NotFound(w, "User not found")
		return
	}
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	slog.Info("user admin flag changed", "user_id", id, "is_admin", *req.IsAdmin, "by", current.ID)
	respond.OK(w, user)
}

// Delete removes a user. Admins cannot delete themselves, and users who
// still author posts are refused.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	current := middleware.UserFromCtx(r.Context())
	if current.ID == id {
		respond.BadRequest(w, "You cannot delete your own account")
		return
	}

	found, err := h.users.Delete(r.Context(), id)
	if errors.Is(err, store.ErrUserHasPosts) {
		respond.Conflict(w, "User still authors posts")
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if !found {
		respond.NotFound(w, "User not found")
		return
	}
	slog.Info("user deleted", "user_id", id, "by", current.ID)
	w.WriteHeader(http.StatusNoContent)
}
