// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generation schedules AI-written posts and runs the schedules that
// have come due. Admins create schedules through Service; an external cron
// (or the built-in trigger) runs Processor, which claims each due schedule,
// asks the Generator for an article and stores it as a post.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"coinpress/internal/models"
)

// Errors reported to the scheduling API.
var (
	ErrScheduledInPast    = errors.New("scheduledFor must be in the future")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrNotPending         = errors.New("only pending schedules can be cancelled")
	ErrTitleRequired      = errors.New("title is required")
	ErrAuthorRequired     = errors.New("an admin author is required")
	ErrInvalidScheduledAt = errors.New("scheduledFor must be an RFC 3339 timestamp")
)

// ScheduleStore persists generation schedules. *store.ScheduleStore
// satisfies it.
type ScheduleStore interface {
	Create(ctx context.Context, g *models.GenerationSchedule) (*models.GenerationSchedule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.GenerationSchedule, error)
	List(ctx context.Context, status models.ScheduleStatus, page models.Page) ([]models.GenerationSchedule, int, error)
	ListDue(ctx context.Context, now time.Time) ([]models.GenerationSchedule, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Complete(ctx context.Context, id, postID uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)
}

// TopicStore is the slice of topic persistence scheduling touches.
type TopicStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Topic, error)
	MarkScheduled(ctx context.Context, id uuid.UUID, at time.Time) error
	ResetPending(ctx context.Context, id uuid.UUID) error
	MarkGenerated(ctx context.Context, id uuid.UUID) error
}

// CategoryFinder looks categories up by id.
type CategoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// AuthorFinder resolves the author of a generated post.
type AuthorFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindAnyAdmin(ctx context.Context) (*models.User, error)
}

// PostWriter stores generated posts.
type PostWriter interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ScheduleInput is an admin's request to generate a post later.
type ScheduleInput struct {
	TopicID      *uuid.UUID
	Title        string
	Description  string
	CategoryID   uuid.UUID
	ScheduledFor string // RFC 3339
	AuthorID     uuid.UUID
}

// Service implements the admin-facing scheduling operations.
type Service struct {
	schedules  ScheduleStore
	topics     TopicStore
	categories CategoryFinder
	now        func() time.Time
}

// NewService creates a scheduling service.
func NewService(schedules ScheduleStore, topics TopicStore, categories CategoryFinder) *Service {
	return &Service{
		schedules:  schedules,
		topics:     topics,
		categories: categories,
		now:        time.Now,
	}
}

// ParseScheduledFor parses an RFC 3339 timestamp, with or without
// fractional seconds.
func ParseScheduledFor(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidScheduledAt
	}
	return t, nil
}

// Schedule validates in and creates a pending schedule. A linked topic is
// approved and gets the same scheduled time; its title and description fill
// in whatever the request left empty.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (*models.GenerationSchedule, error) {
	if in.AuthorID == uuid.Nil {
		return nil, ErrAuthorRequired
	}

	at, err := ParseScheduledFor(in.ScheduledFor)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, ErrScheduledInPast
	}

	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("schedule generation: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	var topic *models.Topic
	if in.TopicID != nil {
		topic, err = s.topics.FindByID(ctx, *in.TopicID)
		if err != nil {
			return nil, fmt.Errorf("schedule generation: %w", err)
		}
		if topic == nil {
			return nil, ErrTopicNotFound
		}
		if title == "" {
			title = topic.Title
		}
		if description == "" {
			description = topic.Description
		}
	}

	if title == "" {
		return nil, ErrTitleRequired
	}

	if topic != nil {
		if err := s.topics.MarkScheduled(ctx, topic.ID, at); err != nil {
			return nil, fmt.Errorf("schedule generation: %w", err)
		}
	}

	author := in.AuthorID
	created, err := s.schedules.Create(ctx, &models.GenerationSchedule{
		TopicID:      in.TopicID,
		Title:        title,
		Description:  description,
		CategoryID:   category.ID,
		AuthorID:     &author,
		ScheduledFor: at.UTC(),
		Status:       models.SchedulePending,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule generation: %w", err)
	}
	return created, nil
}

// List returns a page of schedules, optionally filtered by status.
func (s *Service) List(ctx context.Context, status models.ScheduleStatus, page models.Page) ([]models.GenerationSchedule, models.Pagination, error) {
	items, total, err := s.schedules.List(ctx, status, page)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list schedules: %w", err)
	}
	if items == nil {
		items = []models.GenerationSchedule{}
	}
	return items, models.NewPagination(page, total), nil
}

// Cancel deletes a pending schedule and returns its topic to pending.
// Schedules that are processing or terminal are left untouched.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	g, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("cancel schedule: %w", err)
	}
	if g == nil {
		return ErrScheduleNotFound
	}
	if g.Status != models.SchedulePending {
		return ErrNotPending
	}

	deleted, err := s.schedules.DeletePending(ctx, id)
	if err != nil {
		return fmt.Errorf("cancel schedule: %w", err)
	}
	if !deleted {
		// Claimed by a processor run between the read and the delete.
		return ErrNotPending
	}

	if g.TopicID != nil {
		if err := s.topics.ResetPending(ctx, *g.TopicID); err != nil {
			return fmt.Errorf("cancel schedule: %w", err)
		}
	}
	return nil
}
