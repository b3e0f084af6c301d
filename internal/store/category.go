// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"coinpress/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, icon, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with post counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.icon,
		       c.created_at, c.updated_at,
		       COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon,
			&c.CreatedAt, &c.UpdatedAt, &c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. A name or slug clash yields
// ErrSlugTaken or ErrDuplicate.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, icon)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Icon,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, categoryWriteError("create category", err)
	}
	return result, nil
}

// Update modifies an existing category. Returns nil if it does not exist.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, icon = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Icon, c.ID,
	)
	result, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, categoryWriteError("update category", err)
	}
	return result, nil
}

// PostCount returns how many posts reference the category.
func (s *CategoryStore) PostCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE category_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category posts: %w", err)
	}
	return n, nil
}

// Delete removes a category by ID. It is refused with ErrCategoryInUse while
// any post references the category; the foreign key backs the same rule if
// a post is inserted between the check and the delete. Returns false if no
// such category.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.PostCount(ctx, id)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, ErrCategoryInUse
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if pgCode(err) == pgForeignKeyViolation {
		return false, ErrCategoryInUse
	}
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func categoryWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		if strings.Contains(constraintName(err), "slug") {
			return ErrSlugTaken
		}
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
