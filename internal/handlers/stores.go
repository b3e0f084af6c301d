// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"

	"github.com/google/uuid"

	"coinpress/internal/ai"
	"coinpress/internal/generation"
	"coinpress/internal/models"
	"coinpress/internal/store"
)

// UserStore is the user persistence the auth and user handlers need.
// *store.UserStore satisfies it.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page models.Page) ([]models.User, int, error)
	Create(ctx context.Context, username, email, password, displayName string, isAdmin bool) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, p store.ProfileUpdate) (*models.User, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (bool, error)
	SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, id uuid.UUID) error
	ResetTOTP(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CheckPassword(user *models.User, password string) bool
}

// CategoryStore is satisfied by *store.CategoryStore.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PostStore is satisfied by *store.PostStore.
type PostStore interface {
	List(ctx context.Context, f store.PostFilter, page models.Page) ([]models.Post, int, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Related(ctx context.Context, post *models.Post, limit int) ([]models.Post, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SitemapEntries(ctx context.Context) ([]store.SitemapEntry, error)
}

// CommentStore is satisfied by *store.CommentStore.
type CommentStore interface {
	ListApprovedThreads(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	List(ctx context.Context, status store.CommentStatus, page models.Page) ([]models.Comment, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// TopicStore is satisfied by *store.TopicStore.
type TopicStore interface {
	Create(ctx context.Context, t *models.Topic) (*models.Topic, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Topic, error)
	List(ctx context.Context, status models.TopicStatus, page models.Page) ([]models.Topic, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.TopicStatus) (*models.Topic, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PromptChecker screens reader text before it can reach a prompt.
// *ai.Registry satisfies it.
type PromptChecker interface {
	CheckPrompt(ctx context.Context, text string) (*ai.ModerationResult, error)
}

// DueRunner processes due generation schedules. *generation.Processor
// satisfies it.
type DueRunner interface {
	RunDue(ctx context.Context) (*generation.RunSummary, error)
}

// CoverStore persists uploaded cover images. *storage.Client satisfies it.
type CoverStore interface {
	SaveCover(ctx context.Context, data []byte) (string, error)
}
