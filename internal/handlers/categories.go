// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"coinpress/internal/cache"
	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/slug"
	"coinpress/internal/store"
)

// Categories groups the category handlers.
type Categories struct {
	categories CategoryStore
	cache      *cache.Responses
}

// NewCategories creates a new Categories handler group. responses may be nil.
func NewCategories(categories CategoryStore, responses *cache.Responses) *Categories {
	return &Categories{categories: categories, cache: responses}
}

// List returns every category with its post count.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	respond.OK(w, cats)
}

// Get returns one category by slug.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if c == nil {
		respond.NotFound(w, "Category not found")
		return
	}
	respond.OK(w, c)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (req *categoryRequest) validate() fieldErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}

	errs := fieldErrors{}
	errs.required("name", req.Name, maxNameLen)
	errs.slug("slug", req.Slug)
	errs.maxLen("description", req.Description, maxDescriptionLen)
	errs.maxLen("icon", req.Icon, maxNameLen)
	if req.Name != "" && req.Slug == "" {
		errs.add("slug", "could not be derived from the name")
	}
	return errs
}

// Create adds a category. The slug is derived from the name when empty.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(); !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	c, err := h.categories.Create(r.Context(), &models.Category{
		Name: req.Name, Slug: req.Slug, Description: req.Description, Icon: req.Icon,
	})
	if !h.writeErr(w, r, err) {
		return
	}
	h.invalidate(r)
	respond.Created(w, c)
}

// Update replaces a category's fields.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(); !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	c, err := h.categories.Update(r.Context(), &models.Category{
		ID: id, Name: req.Name, Slug: req.Slug, Description: req.Description, Icon: req.Icon,
	})
	if !h.writeErr(w, r, err) {
		return
	}
	if c == nil {
		respond.NotFound(w, "Category not found")
		return
	}
	h.invalidate(r)
	respond.OK(w, c)
}

// Delete removes a category, refused while any post references it.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	found, err := h.categories.Delete(r.Context(), id)
	if errors.Is(err, store.ErrCategoryInUse) {
		respond.Conflict(w, "Category still has posts")
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if !found {
		respond.NotFound(w, "Category not found")
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// writeErr maps store write errors. It returns true when err is nil.
func (h *Categories) writeErr(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrSlugTaken):
		respond.Conflict(w, "Slug is already taken")
	case errors.Is(err, store.ErrDuplicate):
		respond.Conflict(w, "A category with this name already exists")
	default:
		respond.InternalError(w, r, err)
	}
	return false
}

// invalidate drops every cached response: post details embed the category.
func (h *Categories) invalidate(r *http.Request) {
	h.cache.InvalidateAll(r.Context())
}
