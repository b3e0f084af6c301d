// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coinpress/internal/cache"
	"coinpress/internal/markdown"
	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/slug"
	"coinpress/internal/store"
)

// relatedLimit is how many related posts a post page shows.
const relatedLimit = 3

// Posts groups the post handlers.
type Posts struct {
	posts      PostStore
	categories CategoryStore
	cache      *cache.Responses
}

// NewPosts creates a new Posts handler group. responses may be nil.
func NewPosts(posts PostStore, categories CategoryStore, responses *cache.Responses) *Posts {
	return &Posts{posts: posts, categories: categories, cache: responses}
}

// List returns a page of posts, newest first, filtered by the category,
// tag and q query parameters.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageFromQuery(r)
	filter := store.PostFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Tag:          strings.TrimSpace(q.Get("tag")),
		Query:        strings.TrimSpace(q.Get("q")),
	}

	posts, total, err := h.posts.List(r.Context(), filter, page)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.OK(w, postList{Posts: orEmpty(posts), Pagination: models.NewPagination(page, total)})
}

// Get returns one post by slug with its rendered, sanitised body.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if p == nil {
		respond.NotFound(w, "Post not found")
		return
	}

	html, err := markdown.ToHTML(p.Body)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	p.BodyHTML = html
	respond.OK(w, p)
}

// Related returns up to three other posts from the same category.
func (h *Posts) Related(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if p == nil {
		respond.NotFound(w, "Post not found")
		return
	}

	related, err := h.posts.Related(r.Context(), p, relatedLimit)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if related == nil {
		related = []models.Post{}
	}
	respond.OK(w, related)
}

type postRequest struct {
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Body          string    `json:"body"`
	CoverImage    string    `json:"coverImage"`
	CategoryID    uuid.UUID `json:"categoryId"`
	Tags          []string  `json:"tags"`
	RelatedAssets []string  `json:"relatedAssets"`
}

func (req *postRequest) validate() fieldErrors {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	req.Excerpt = strings.TrimSpace(req.Excerpt)
	req.CoverImage = strings.TrimSpace(req.CoverImage)
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}
	req.Tags = cleanList(req.Tags)
	req.RelatedAssets = cleanList(req.RelatedAssets)
	for i, a := range req.RelatedAssets {
		req.RelatedAssets[i] = strings.ToUpper(a)
	}

	errs := fieldErrors{}
	errs.required("title", req.Title, maxTitleLen)
	errs.required("body", req.Body, maxBodyLen)
	errs.maxLen("excerpt", req.Excerpt, maxExcerptLen)
	errs.slug("slug", req.Slug)
	errs.tags("tags", req.Tags)
	errs.tags("relatedAssets", req.RelatedAssets)
	if req.Title != "" && req.Slug == "" {
		errs.add("slug", "could not be derived from the title")
	}
	if req.CategoryID == uuid.Nil {
		errs.add("categoryId", "is required")
	}
	return errs
}

// category resolves the request's category, writing a 404 when missing.
func (h *Posts) category(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*models.Category, bool) {
	c, err := h.categories.FindByID(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return nil, false
	}
	if c == nil {
		respond.NotFound(w, "Category not found")
		return nil, false
	}
	return c, true
}

// Create publishes a hand-written post authored by the current admin.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(); !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}
	if _, ok := h.category(w, r, req.CategoryID); !ok {
		return
	}

	author := middleware.UserFromCtx(r.Context())
	p, err := h.posts.Create(r.Context(), &models.Post{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Body:          req.Body,
		CoverImage:    req.CoverImage,
		ReadingTime:   markdown.ReadingTime(req.Body),
		AuthorID:      author.ID,
		CategoryID:    req.CategoryID,
		Tags:          req.Tags,
		RelatedAssets: req.RelatedAssets,
	})
	if errors.Is(err, store.ErrSlugTaken) {
		respond.Conflict(w, "Slug is already taken")
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}

	h.cache.Invalidate(r.Context(), cache.SitemapKey, cache.CategoriesKey)
	slog.Info("post created", "post_id", p.ID, "slug", p.Slug, "by", author.ID)
	respond.Created(w, p)
}

// Update replaces a post's editable fields.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(); !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	existing, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if existing == nil {
		respond.NotFound(w, "Post not found")
		return
	}
	if _, ok := h.category(w, r, req.CategoryID); !ok {
		return
	}

	oldSlug := existing.Slug
	existing.Title = req.Title
	existing.Slug = req.Slug
	existing.Excerpt = req.Excerpt
	existing.Body = req.Body
	existing.CoverImage = req.CoverImage
	existing.ReadingTime = markdown.ReadingTime(req.Body)
	existing.CategoryID = req.CategoryID
	existing.Tags = req.Tags
	existing.RelatedAssets = req.RelatedAssets

	updated, err := h.posts.Update(r.Context(), existing)
	if errors.Is(err, store.ErrSlugTaken) {
		respond.Conflict(w, "Slug is already taken")
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if updated == nil {
		respond.NotFound(w, "Post not found")
		return
	}

	h.cache.Invalidate(r.Context(), cache.PostKey(oldSlug), cache.PostKey(updated.Slug), cache.SitemapKey, cache.CategoriesKey)
	respond.OK(w, updated)
}

// Delete removes a post and its comments.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if existing == nil {
		respond.NotFound(w, "Post not found")
		return
	}

	found, err := h.posts.Delete(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if !found {
		respond.NotFound(w, "Post not found")
		return
	}

	h.cache.Invalidate(r.Context(), cache.PostKey(existing.Slug), cache.SitemapKey, cache.CategoriesKey)
	slog.Info("post deleted", "post_id", id, "slug", existing.Slug)
	w.WriteHeader(http.StatusNoContent)
}
