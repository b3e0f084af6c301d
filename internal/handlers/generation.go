// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"coinpress/internal/generation"
	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
)

// Scheduler is the scheduling service. *generation.Service satisfies it.
type Scheduler interface {
	Schedule(ctx context.Context, in generation.ScheduleInput) (*models.GenerationSchedule, error)
	List(ctx context.Context, status models.ScheduleStatus, page models.Page) ([]models.GenerationSchedule, models.Pagination, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Generation groups the schedule management and cron trigger handlers.
type Generation struct {
	scheduler Scheduler
	runner    DueRunner
}

// NewGeneration creates a new Generation handler group.
func NewGeneration(scheduler Scheduler, runner DueRunner) *Generation {
	return &Generation{scheduler: scheduler, runner: runner}
}

type scheduleRequest struct {
	TopicID      *uuid.UUID `json:"topicId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CategoryID   uuid.UUID  `json:"categoryId"`
	ScheduledFor string     `json:"scheduledFor"`
}

// Schedule plans a post generation for a future time.
func (h *Generation) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if req.CategoryID == uuid.Nil {
		errs.add("categoryId", "is required")
	}
	if req.ScheduledFor == "" {
		errs.add("scheduledFor", "is required")
	}
	errs.maxLen("title", req.Title, maxTitleLen)
	errs.maxLen("description", req.Description, maxDescriptionLen)
	if !errs.empty() {
		respond.ValidationError(w, errs)
		return
	}

	admin := middleware.UserFromCtx(r.Context())
	g, err := h.scheduler.Schedule(r.Context(), generation.ScheduleInput{
		TopicID:      req.TopicID,
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		ScheduledFor: req.ScheduledFor,
		AuthorID:     admin.ID,
	})
	if err != nil {
		scheduleError(w, r, err)
		return
	}
	slog.Info("generation scheduled", "schedule_id", g.ID, "scheduled_for", g.ScheduledFor, "by", admin.ID)
	respond.Created(w, g)
}

// ListSchedules returns a page of schedules in scheduled order.
func (h *Generation) ListSchedules(w http.ResponseWriter, r *http.Request) {
	status := models.ScheduleStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respond.ValidationError(w, map[string]string{"status": "is not a known schedule status"})
		return
	}

	page := pageFromQuery(r)
	items, pagination, err := h.scheduler.List(r.Context(), status, page)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.OK(w, scheduleList{Schedules: orEmpty(items), Pagination: pagination})
}

// Cancel deletes a pending schedule.
func (h *Generation) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.scheduler.Cancel(r.Context(), id); err != nil {
		scheduleError(w, r, err)
		return
	}
	slog.Info("generation schedule cancelled", "schedule_id", id)
	respond.OK(w, respond.Message{Message: "Schedule cancelled"})
}

func scheduleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generation.ErrInvalidScheduledAt),
		errors.Is(err, generation.ErrScheduledInPast):
		respond.ValidationError(w, map[string]string{"scheduledFor": err.Error()})
	case errors.Is(err, generation.ErrTitleRequired):
		respond.ValidationError(w, map[string]string{"title": err.Error()})
	case errors.Is(err, generation.ErrCategoryNotFound),
		errors.Is(err, generation.ErrTopicNotFound),
		errors.Is(err, generation.ErrScheduleNotFound):
		respond.NotFound(w, err.Error())
	case errors.Is(err, generation.ErrNotPending):
		respond.BadRequest(w, err.Error())
	default:
		respond.InternalError(w, r, err)
	}
}

// RunDue is the cron endpoint: it generates every due post and reports
// per-item outcomes. The run is detached from the request so a caller
// hanging up does not abort items mid-generation.
func (h *Generation) RunDue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.RunDue(context.WithoutCancel(r.Context()))
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	respond.OK(w, summary)
}
