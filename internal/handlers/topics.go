// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
)

// Topics groups the topic submission and review handlers.
type Topics struct {
	topics     TopicStore
	categories CategoryStore
	checker    PromptChecker // nil disables moderation
}

// NewTopics creates a new Topics handler group. checker may be nil.
func NewTopics(topics TopicStore, categories CategoryStore, checker PromptChecker) *Topics {
	return &Topics{topics: topics, categories: categories, checker: checker}
}

type topicRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"categoryId"`
	GuestEmail  string    `json:"guestEmail"`
}

// Submit records a topic idea from a reader, a guest or an admin. The text
// will end up in a generation prompt, so it is screened by the moderation
// API first.
func (h *Topics) Submit(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.GuestEmail = strings.ToLower(strings.TrimSpace(req.GuestEmail))

	user := middleware.UserFromCtx(r.Context())

	errs := fieldErrors{}
	errs.required("title", req.Title, maxTitleLen)
	errs.maxLen("description", req.Description, maxDescriptionLen)
	if req.CategoryID == uuid.Nil {
		errs.add("categoryId", "is required")
	}
	if user == nil && req.GuestEmail != "" {
		errs.email("guestEmail", req.GuestEmail)
	}
	if !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	c, err := h.categories.FindByID(r.Context(), req.CategoryID)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if c == nil {
		respond.NotFound(w, "Category not found")
		return
	}

	if flagged := h.flagged(r.Context(), req.Title+"\n\n"+req.Description); len(flagged) > 0 {
		respond.Error(w, http.StatusUnprocessableEntity, "content_flagged",
			"Your topic was flagged for: "+strings.Join(flagged, ", ")+". Please reformulate it.", nil)
		return
	}

	t := &models.Topic{Title: req.Title, Description: req.Description, CategoryID: c.ID}
	if user != nil {
		t.SubmittedBy = &user.ID
	} else if req.GuestEmail != "" {
		t.GuestEmail = &req.GuestEmail
	}

	created, err := h.topics.Create(r.Context(), t)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	slog.Info("topic submitted", "topic_id", created.ID, "guest", user == nil)
	respond.Created(w, created)
}

// flagged returns the moderation categories text was flagged for. A
// moderation outage lets the text through: providers still apply their
// own filters at generation time.
func (h *Topics) flagged(ctx context.Context, text string) []string {
	if h.checker == nil {
		return nil
	}
	res, err := h.checker.CheckPrompt(ctx, text)
	if err != nil {
		slog.Warn("moderation check failed, allowing topic", "error", err)
		return nil
	}
	if res.Safe {
		return nil
	}
	slog.Warn("topic flagged by moderation", "categories", res.Categories)
	if len(res.Categories) == 0 {
		return []string{"policy violation"}
	}
	return res.Categories
}

// List returns a page of topics, optionally filtered by status.
func (h *Topics) List(w http.ResponseWriter, r *http.Request) {
	status := models.TopicStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respond.ValidationError(w, map[string]string{"status": "is not a known topic status"})
		return
	}

	page := pageFromQuery(r)
	items, total, err := h.topics.List(r.Context(), status, page)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.OK(w, topicList{Topics: orEmpty(items), Pagination: models.NewPagination(page, total)})
}

type topicStatusRequest struct {
	Status models.TopicStatus `json:"status"`
}

// SetStatus approves or rejects a topic.
func (h *Topics) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req topicStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status != models.TopicApproved && req.Status != models.TopicRejected {
		respond.ValidationError(w, map[string]string{"status": "must be approved or rejected"})
		return
	}

	t, err := h.topics.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if t == nil {
		respond.NotFound(w, "Topic not found")
		return
	}
	respond.OK(w, t)
}

// Delete removes a topic. Schedules that referenced it keep their own
// title and description.
func (h *Topics) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	found, err := h.topics.Delete(r.Context(), id)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if !found {
		respond.NotFound(w, "Topic not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
