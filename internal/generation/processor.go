// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coinpress/internal/models"
	"coinpress/internal/slug"
	"coinpress/internal/store"
)

// Item outcomes reported in a run summary.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// ItemResult is the outcome of one due schedule.
type ItemResult struct {
	ScheduleID uuid.UUID  `json:"scheduleId"`
	Status     string     `json:"status"`
	PostID     *uuid.UUID `json:"postId,omitempty"`
	Title      string     `json:"title,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// RunSummary is what one processor run reports.
type RunSummary struct {
	Message   string       `json:"message"`
	Processed int          `json:"processed"`
	Success   int          `json:"success"`
	Failure   int          `json:"failure"`
	Results   []ItemResult `json:"results"`
}

// Processor generates posts for schedules that have come due.
type Processor struct {
	schedules  ScheduleStore
	topics     TopicStore
	categories CategoryFinder
	authors    AuthorFinder
	posts      PostWriter
	generator  *Generator
	prompts    *Prompts
	now        func() time.Time

	// OnPublished runs after each generated post is stored.
	OnPublished func(ctx context.Context, p *models.Post)
}

// ProcessorDeps groups the processor's collaborators.
type ProcessorDeps struct {
	Schedules  ScheduleStore
	Topics     TopicStore
	Categories CategoryFinder
	Authors    AuthorFinder
	Posts      PostWriter
	Generator  *Generator
	Prompts    *Prompts
}

// NewProcessor creates a processor.
func NewProcessor(d ProcessorDeps) *Processor {
	return &Processor{
		schedules:  d.Schedules,
		topics:     d.Topics,
		categories: d.Categories,
		authors:    d.Authors,
		posts:      d.Posts,
		generator:  d.Generator,
		prompts:    d.Prompts,
		now:        time.Now,
	}
}

// RunDue processes every pending schedule due at the current time, one at
// a time in scheduled order. Each schedule is claimed first; one another
// run already claimed is skipped and not counted. Per-item failures are
// recorded on the schedule and never abort the run. Only a failure to list
// due schedules is returned as an error.
func (p *Processor) RunDue(ctx context.Context) (*RunSummary, error) {
	due, err := p.schedules.ListDue(ctx, p.now())
	if err != nil {
		return nil, fmt.Errorf("run due schedules: %w", err)
	}

	summary := &RunSummary{Results: []ItemResult{}}
	if len(due) == 0 {
		summary.Message = "No scheduled posts due"
		return summary, nil
	}

	for i := range due {
		g := &due[i]

		claimed, err := p.schedules.Claim(ctx, g.ID)
		if err != nil {
			slog.Error("claim schedule failed", "schedule_id", g.ID, "error", err)
			continue
		}
		if !claimed {
			slog.Info("schedule already claimed, skipping", "schedule_id", g.ID)
			continue
		}

		res := p.processOne(ctx, g)
		summary.Processed++
		if res.Status == OutcomeSuccess {
			summary.Success++
		} else {
			summary.Failure++
		}
		summary.Results = append(summary.Results, res)
	}

	summary.Message = fmt.Sprintf("Processed %d scheduled posts", summary.Processed)
	slog.Info("generation run finished",
		"processed", summary.Processed, "success", summary.Success, "failure", summary.Failure)
	return summary, nil
}

// processOne runs a claimed schedule to a terminal state. The terminal
// writes ignore cancellation of ctx so a claimed schedule never stays
// processing.
func (p *Processor) processOne(ctx context.Context, g *models.GenerationSchedule) ItemResult {
	post, err := p.generate(ctx, g)
	done := context.WithoutCancel(ctx)
	if err != nil {
		msg := err.Error()
		if ferr := p.schedules.Fail(done, g.ID, msg); ferr != nil {
			slog.Error("record schedule failure", "schedule_id", g.ID, "error", ferr)
		}
		slog.Warn("scheduled generation failed", "schedule_id", g.ID, "error", msg)
		return ItemResult{ScheduleID: g.ID, Status: OutcomeFailed, Error: msg}
	}

	if err := p.schedules.Complete(done, g.ID, post.ID); err != nil {
		// The post exists; the schedule is left processing and never re-run.
		slog.Error("complete schedule after publishing", "schedule_id", g.ID, "post_id", post.ID, "error", err)
	}
	if g.TopicID != nil {
		if err := p.topics.MarkGenerated(done, *g.TopicID); err != nil {
			slog.Error("mark topic generated", "topic_id", *g.TopicID, "error", err)
		}
	}
	if p.OnPublished != nil {
		p.OnPublished(done, post)
	}

	slog.Info("scheduled post generated", "schedule_id", g.ID, "post_id", post.ID, "slug", post.Slug)
	postID := post.ID
	return ItemResult{ScheduleID: g.ID, Status: OutcomeSuccess, PostID: &postID, Title: post.Title}
}

// generate resolves the author and category, calls the generator and
// stores the post.
func (p *Processor) generate(ctx context.Context, g *models.GenerationSchedule) (*models.Post, error) {
	author, err := p.resolveAuthor(ctx, g)
	if err != nil {
		return nil, err
	}

	category, err := p.categories.FindByID(ctx, g.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if !p.generator.Configured() {
		return nil, ErrNotConfigured
	}

	result, err := p.generator.Generate(ctx, Request{
		Template:    p.prompts.For(category.Slug),
		Category:    category,
		Author:      author,
		Title:       g.Title,
		Description: g.Description,
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("generation returned no result")
	}

	return p.storePost(ctx, result, author, category)
}

// resolveAuthor prefers the schedule's author and falls back to any admin.
func (p *Processor) resolveAuthor(ctx context.Context, g *models.GenerationSchedule) (*models.User, error) {
	if g.AuthorID != nil {
		u, err := p.authors.FindByID(ctx, *g.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("load author: %w", err)
		}
		if u != nil {
			return u, nil
		}
	}

	admin, err := p.authors.FindAnyAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("find admin author: %w", err)
	}
	if admin == nil {
		return nil, errors.New("no admin user available to author the post")
	}
	return admin, nil
}

// storePost creates the post, suffixing the slug when it is taken.
func (p *Processor) storePost(ctx context.Context, r *Result, author *models.User, category *models.Category) (*models.Post, error) {
	postSlug := r.Slug
	exists, err := p.posts.SlugExists(ctx, postSlug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		postSlug = slug.WithSuffix(postSlug)
	}

	post := &models.Post{
		Title:         r.Title,
		Slug:          postSlug,
		Excerpt:       r.Excerpt,
		Body:          r.Body,
		CoverImage:    r.CoverImage,
		PublishedAt:   p.now().UTC(),
		ReadingTime:   r.ReadingTime,
		AuthorID:      author.ID,
		CategoryID:    category.ID,
		IsGenerated:   true,
		RelatedAssets: r.RelatedAssets,
		Tags:          r.Tags,
	}

	created, err := p.posts.Create(ctx, post)
	if errors.Is(err, store.ErrSlugTaken) {
		post.Slug = slug.WithSuffix(r.Slug)
		created, err = p.posts.Create(ctx, post)
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}
