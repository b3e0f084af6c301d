// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"coinpress/internal/models"
)

// ScheduleStore persists generation schedules. Status changes made by the
// processor are conditional on the current status so that a schedule can
// leave pending exactly once.
type ScheduleStore struct {
	db *sql.DB
}

// NewScheduleStore creates a new ScheduleStore.
func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

const scheduleColumns = `id, topic_id, title, description, category_id, author_id,
	scheduled_for, status, generated_post_id, error_message, created_at, updated_at`

func scanSchedule(row rowScanner) (*models.GenerationSchedule, error) {
	g := &models.GenerationSchedule{}
	err := row.Scan(
		&g.ID, &g.TopicID, &g.Title, &g.Description, &g.CategoryID, &g.AuthorID,
		&g.ScheduledFor, &g.Status, &g.GeneratedPostID, &g.ErrorMessage,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new pending schedule.
func (s *ScheduleStore) Create(ctx context.Context, g *models.GenerationSchedule) (*models.GenerationSchedule, error) {
	created, err := scanSchedule(s.db.QueryRowContext(ctx, `
		INSERT INTO generation_schedules (topic_id, title, description, category_id, author_id, scheduled_for, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+scheduleColumns,
		g.TopicID, g.Title, g.Description, g.CategoryID, g.AuthorID, g.ScheduledFor, models.SchedulePending,
	))
	if err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return created, nil
}

// FindByID retrieves a schedule. Returns nil if not found.
func (s *ScheduleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.GenerationSchedule, error) {
	g, err := scanSchedule(s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM generation_schedules WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find schedule by id: %w", err)
	}
	return g, nil
}

// List returns a page of schedules ordered by scheduled time ascending, with
// topic, category, author and generated post summaries populated.
func (s *ScheduleStore) List(ctx context.Context, status models.ScheduleStatus, page models.Page) ([]models.GenerationSchedule, int, error) {
	conds := sq.And{}
	if status != "" {
		conds = append(conds, sq.Eq{"g.status": status})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("generation_schedules g").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build schedule count: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	query, args, err := psql.Select(
		"g.id", "g.topic_id", "g.title", "g.description", "g.category_id", "g.author_id",
		"g.scheduled_for", "g.status", "g.generated_post_id", "g.error_message",
		"g.created_at", "g.updated_at",
		"t.title", "t.status",
		"c.name", "c.slug", "c.icon",
		"u.username", "u.display_name",
		"p.title", "p.slug",
	).
		From("generation_schedules g").
		LeftJoin("topics t ON t.id = g.topic_id").
		Join("categories c ON c.id = g.category_id").
		LeftJoin("users u ON u.id = g.author_id").
		LeftJoin("posts p ON p.id = g.generated_post_id").
		Where(conds).
		OrderBy("g.scheduled_for ASC", "g.created_at ASC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build schedule list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	items := []models.GenerationSchedule{}
	for rows.Next() {
		var (
			g                         models.GenerationSchedule
			topicTitle, topicStatus   sql.NullString
			catName, catSlug, catIcon string
			username, displayName     sql.NullString
			postTitle, postSlug       sql.NullString
		)
		err := rows.Scan(
			&g.ID, &g.TopicID, &g.Title, &g.Description, &g.CategoryID, &g.AuthorID,
			&g.ScheduledFor, &g.Status, &g.GeneratedPostID, &g.ErrorMessage,
			&g.CreatedAt, &g.UpdatedAt,
			&topicTitle, &topicStatus,
			&catName, &catSlug, &catIcon,
			&username, &displayName,
			&postTitle, &postSlug,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan schedule: %w", err)
		}

		g.Category = &models.CategorySummary{ID: g.CategoryID, Name: catName, Slug: catSlug, Icon: catIcon}
		if g.TopicID != nil && topicTitle.Valid {
			g.Topic = &models.TopicSummary{ID: *g.TopicID, Title: topicTitle.String, Status: models.TopicStatus(topicStatus.String)}
		}
		if g.AuthorID != nil && username.Valid {
			name := displayName.String
			if name == "" {
				name = username.String
			}
			g.Author = &models.UserSummary{ID: *g.AuthorID, Username: username.String, DisplayName: name}
		}
		if g.GeneratedPostID != nil && postTitle.Valid {
			g.GeneratedPost = &models.PostSummary{ID: *g.GeneratedPostID, Title: postTitle.String, Slug: postSlug.String}
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}

// ListDue returns pending schedules whose time is at or before now,
// ordered by scheduled time ascending.
func (s *ScheduleStore) ListDue(ctx context.Context, now time.Time) ([]models.GenerationSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM generation_schedules
		WHERE status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for ASC, created_at ASC
	`, models.SchedulePending, now)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	defer rows.Close()

	var items []models.GenerationSchedule
	for rows.Next() {
		g, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// Claim moves a schedule from pending to processing. It reports false when
// the schedule was no longer pending, i.e. another run already took it.
func (s *ScheduleStore) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE generation_schedules SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.ScheduleProcessing, id, models.SchedulePending)
	if err != nil {
		return false, fmt.Errorf("claim schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim schedule rows: %w", err)
	}
	return n == 1, nil
}

// Complete marks a claimed schedule completed with its generated post.
func (s *ScheduleStore) Complete(ctx context.Context, id, postID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE generation_schedules
		SET status = $1, generated_post_id = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, models.ScheduleCompleted, postID, id, models.ScheduleProcessing)
	if err != nil {
		return fmt.Errorf("complete schedule: %w", err)
	}
	return nil
}

// Fail marks a claimed schedule failed with the error text.
func (s *ScheduleStore) Fail(ctx context.Context, id uuid.UUID, message string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE generation_schedules
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, models.ScheduleFailed, message, id, models.ScheduleProcessing)
	if err != nil {
		return fmt.Errorf("fail schedule: %w", err)
	}
	return nil
}

// DeletePending removes a schedule only while it is still pending. It
// reports false when the schedule had already left pending.
func (s *ScheduleStore) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM generation_schedules WHERE id = $1 AND status = $2
	`, id, models.SchedulePending)
	if err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
