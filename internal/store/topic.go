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

// TopicStore manages submitted content ideas.
type TopicStore struct {
	db *sql.DB
}

// NewTopicStore creates a new TopicStore.
func NewTopicStore(db *sql.DB) *TopicStore {
	return &TopicStore{db: db}
}

const topicColumns = `id, title, description, category_id, submitted_by, guest_email,
	status, scheduled_for, created_at, updated_at`

func scanTopic(row rowScanner) (*models.Topic, error) {
	t := &models.Topic{}
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.CategoryID, &t.SubmittedBy, &t.GuestEmail,
		&t.Status, &t.ScheduledFor, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new topic in the pending state.
func (s *TopicStore) Create(ctx context.Context, t *models.Topic) (*models.Topic, error) {
	created, err := scanTopic(s.db.QueryRowContext(ctx, `
		INSERT INTO topics (title, description, category_id, submitted_by, guest_email, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+topicColumns,
		t.Title, t.Description, t.CategoryID, t.SubmittedBy, t.GuestEmail, models.TopicPending,
	))
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return created, nil
}

// FindByID retrieves a topic. Returns nil if not found.
func (s *TopicStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	t, err := scanTopic(s.db.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find topic by id: %w", err)
	}
	return t, nil
}

// List returns a page of topics, newest first, optionally filtered by status.
func (s *TopicStore) List(ctx context.Context, status models.TopicStatus, page models.Page) ([]models.Topic, int, error) {
	conds := sq.And{}
	if status != "" {
		conds = append(conds, sq.Eq{"status": status})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("topics").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build topic count: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count topics: %w", err)
	}

	query, args, err := psql.Select(topicColumns).From("topics").Where(conds).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build topic list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	items := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan topic: %w", err)
		}
		items = append(items, *t)
	}
	return items, total, rows.Err()
}

// SetStatus changes a topic's status. Returns nil if not found.
func (s *TopicStore) SetStatus(ctx context.Context, id uuid.UUID, status models.TopicStatus) (*models.Topic, error) {
	t, err := scanTopic(s.db.QueryRowContext(ctx, `
		UPDATE topics SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+topicColumns, status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set topic status: %w", err)
	}
	return t, nil
}

// MarkScheduled approves a topic and records when it will be generated.
func (s *TopicStore) MarkScheduled(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE topics SET status = $1, scheduled_for = $2, updated_at = NOW() WHERE id = $3
	`, models.TopicApproved, at, id)
	if err != nil {
		return fmt.Errorf("mark topic scheduled: %w", err)
	}
	return nil
}

// ResetPending returns a topic to pending and clears its scheduled time.
func (s *TopicStore) ResetPending(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE topics SET status = $1, scheduled_for = NULL, updated_at = NOW() WHERE id = $2
	`, models.TopicPending, id)
	if err != nil {
		return fmt.Errorf("reset topic: %w", err)
	}
	return nil
}

// MarkGenerated records that a post was produced for the topic.
func (s *TopicStore) MarkGenerated(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE topics SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.TopicGenerated, id)
	if err != nil {
		return fmt.Errorf("mark topic generated: %w", err)
	}
	return nil
}

// Delete removes a topic. Schedules that referenced it keep their copied
// title and lose the link (ON DELETE SET NULL). Returns false if not found.
func (s *TopicStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete topic: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
