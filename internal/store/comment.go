// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"coinpress/internal/models"
)

// CommentStore handles comment persistence and moderation queries.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, parent_id, content, author_name, author_email,
	user_id, is_approved, created_at`

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(
		&c.ID, &c.PostID, &c.ParentID, &c.Content, &c.AuthorName, &c.AuthorEmail,
		&c.UserID, &c.IsApproved, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentStore) queryList(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListApprovedThreads returns the approved top-level comments of a post,
// oldest first, each carrying its approved replies.
func (s *CommentStore) ListApprovedThreads(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	top, err := s.queryList(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE post_id = $1 AND parent_id IS NULL AND is_approved
		ORDER BY created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list top-level comments: %w", err)
	}
	if len(top) == 0 {
		return top, nil
	}

	replies, err := s.queryList(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE post_id = $1 AND parent_id IS NOT NULL AND is_approved
		ORDER BY created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comment replies: %w", err)
	}
	return models.BuildThreads(top, replies), nil
}

// CommentStatus filters the moderation queue.
type CommentStatus string

const (
	CommentsAll      CommentStatus = "all"
	CommentsPending  CommentStatus = "pending"
	CommentsApproved CommentStatus = "approved"
)

// List returns a page of comments across all posts, newest first.
func (s *CommentStore) List(ctx context.Context, status CommentStatus, page models.Page) ([]models.Comment, int, error) {
	conds := sq.And{}
	switch status {
	case CommentsPending:
		conds = append(conds, sq.Eq{"is_approved": false})
	case CommentsApproved:
		conds = append(conds, sq.Eq{"is_approved": true})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("comments").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build comment count: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query, args, err := psql.Select(commentColumns).From("comments").Where(conds).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build comment list: %w", err)
	}
	items, err := s.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return items, total, nil
}

// FindByID retrieves a comment. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a comment. Callers resolve ParentID to a top-level comment
// of the same post before calling.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	created, err := scanComment(s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, parent_id, content, author_name, author_email, user_id, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+commentColumns,
		c.PostID, c.ParentID, c.Content, c.AuthorName, c.AuthorEmail, c.UserID, c.IsApproved,
	))
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// Approve marks a comment approved. Returns nil if not found.
func (s *CommentStore) Approve(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `
		UPDATE comments SET is_approved = TRUE WHERE id = $1
		RETURNING `+commentColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("approve comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment and, when it is top-level, its direct replies.
// Deleting a reply removes only that reply. Returns the number of rows
// removed; zero means the comment did not exist.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM comments WHERE id = $1 OR parent_id = $1
	`, id)
	if err != nil {
		return 0, fmt.Errorf("delete comment: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
