// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/store"
)

// Comments groups the public comment and moderation handlers.
type Comments struct {
	comments CommentStore
	posts    PostStore
	policy   *bluemonday.Policy
}

// NewComments creates a new Comments handler group.
func NewComments(comments CommentStore, posts PostStore) *Comments {
	return &Comments{comments: comments, posts: posts, policy: bluemonday.StrictPolicy()}
}

func (h *Comments) postBySlug(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	p, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respond.InternalError(w, r, err)
		return nil, false
	}
	if p == nil {
		respond.NotFound(w, "Post not found")
		return nil, false
	}
	return p, true
}

// ListForPost returns a post's approved threads, oldest first.
func (h *Comments) ListForPost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.postBySlug(w, r)
	if !ok {
		return
	}
	threads, err := h.comments.ListApprovedThreads(r.Context(), p.ID)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if threads == nil {
		threads = []models.Comment{}
	}
	respond.OK(w, threads)
}

type commentRequest struct {
	Content     string     `json:"content"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"authorEmail"`
	ParentID    *uuid.UUID `json:"parentId"`
}

// Create adds a comment to a post. Guests must give a name and email.
// Replies to replies attach to the top-level comment of the thread.
// Comments from admins are approved immediately; all others wait for
// moderation.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.postBySlug(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := middleware.UserFromCtx(r.Context())
	c := &models.Comment{
		PostID:  p.ID,
		Content: strings.TrimSpace(h.policy.Sanitize(req.Content)),
	}

	errs := fieldErrors{}
	errs.required("content", c.Content, maxCommentLen)
	if user != nil {
		c.UserID = &user.ID
		c.AuthorName = user.Name()
		c.AuthorEmail = user.Email
		c.IsApproved = user.IsAdmin
	} else {
		c.AuthorName = strings.TrimSpace(h.policy.Sanitize(req.AuthorName))
		c.AuthorEmail = strings.ToLower(strings.TrimSpace(req.AuthorEmail))
		errs.required("authorName", c.AuthorName, maxNameLen)
		errs.email("authorEmail", c.AuthorEmail)
	}
	if !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	if req.ParentID != nil {
		parent, err := h.comments.FindByID(r.Context(), *req.ParentID)
		if err != nil {
			respond.InternalError(w, r, err)
			return
		}
		if parent == nil || parent.PostID != p.ID {
			respond.ValidationError(w, map[string]string{"parentId": "must reference a comment on this post"})
			return
		}
		top := parent.ID
		if parent.ParentID != nil {
			top = *parent.ParentID
		}
		c.ParentID = &top
	}

	created, err := h.comments.Create(r.Context(), c)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.Created(w, created)
}

// List returns the moderation queue. status is pending (default),
// approved or all.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	status := store.CommentStatus(r.URL.Query().Get("status"))
	switch status {
	case "":
		status = store.CommentsPending
	case store.CommentsPending, store.CommentsApproved, store.CommentsAll:
	default:
		respond.ValidationError(w, map[string]string{"status": "must be pending, approved or all"})
		return
	}

	page := pageFromQuery(r)
	items, total, err := h.comments.List(r.Context(), status, page)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.OK(w, commentList{Comments: orEmpty(items), Pagination: models.NewPagination(page, total)})
}

// Approve makes a comment publicly visible.
func (h *Comments) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.comments.Approve(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if c == nil {
		respond.NotFound(w, "Comment not found")
		return
	}
	respond.OK(w, c)
}

type deleteCommentResponse struct {
	Deleted int64 `json:"deleted"`
}

// Delete removes a comment; deleting a top-level comment removes its
// replies as well.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	n, err := h.comments.Delete(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if n == 0 {
		respond.NotFound(w, "Comment not found")
		return
	}
	respond.OK(w, deleteCommentResponse{Deleted: n})
}
