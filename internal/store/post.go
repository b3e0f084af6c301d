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
	"github.com/lib/pq"

	"coinpress/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelectColumns reads a post plus its author and category summaries.
var postSelectColumns = []string{
	"p.id", "p.title", "p.slug", "p.excerpt", "p.body", "p.cover_image",
	"p.published_at", "p.reading_time", "p.author_id", "p.category_id",
	"p.is_generated", "p.related_assets", "p.tags", "p.created_at", "p.updated_at",
	"u.username", "u.display_name",
	"c.name", "c.slug", "c.icon",
}

const postReturning = `RETURNING id, title, slug, excerpt, body, cover_image,
	published_at, reading_time, author_id, category_id, is_generated,
	related_assets, tags, created_at, updated_at`

func postSelect() sq.SelectBuilder {
	return psql.Select(postSelectColumns...).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		Join("categories c ON c.id = p.category_id")
}

// scanPost scans a bare posts row (no joins).
func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.CoverImage,
		&p.PublishedAt, &p.ReadingTime, &p.AuthorID, &p.CategoryID,
		&p.IsGenerated, pq.Array(&p.RelatedAssets), pq.Array(&p.Tags),
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	normalizePostArrays(p)
	return p, nil
}

// scanPostJoined scans a row produced by postSelect.
func scanPostJoined(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	author := &models.UserSummary{}
	cat := &models.CategorySummary{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.CoverImage,
		&p.PublishedAt, &p.ReadingTime, &p.AuthorID, &p.CategoryID,
		&p.IsGenerated, pq.Array(&p.RelatedAssets), pq.Array(&p.Tags),
		&p.CreatedAt, &p.UpdatedAt,
		&author.Username, &author.DisplayName,
		&cat.Name, &cat.Slug, &cat.Icon,
	)
	if err != nil {
		return nil, err
	}
	normalizePostArrays(p)
	author.ID = p.AuthorID
	if author.DisplayName == "" {
		author.DisplayName = author.Username
	}
	cat.ID = p.CategoryID
	p.Author = author
	p.Category = cat
	return p, nil
}

// normalizePostArrays keeps JSON output as [] rather than null.
func normalizePostArrays(p *models.Post) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.RelatedAssets == nil {
		p.RelatedAssets = []string{}
	}
}

// PostFilter narrows a post listing. Empty fields do not filter.
type PostFilter struct {
	CategorySlug string
	Tag          string
	Query        string
}

func (f PostFilter) where() sq.And {
	conds := sq.And{}
	if f.CategorySlug != "" {
		conds = append(conds, sq.Eq{"c.slug": f.CategorySlug})
	}
	if f.Tag != "" {
		conds = append(conds, sq.Expr("? = ANY(p.tags)", f.Tag))
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"p.title": like},
			sq.ILike{"p.excerpt": like},
		})
	}
	return conds
}

// List returns a page of posts, newest first, with the total match count.
func (s *PostStore) List(ctx context.Context, f PostFilter, page models.Page) ([]models.Post, int, error) {
	conds := f.where()

	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From("posts p").
		Join("categories c ON c.id = p.category_id").
		Where(conds).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build post count: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query, args, err := postSelect().
		Where(conds).
		OrderBy("p.published_at DESC", "p.created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build post list: %w", err)
	}

	posts, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (s *PostStore) query(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPostJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *PostStore) findOne(ctx context.Context, what string, pred sq.Sqlizer) (*models.Post, error) {
	query, args, err := postSelect().Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find post: %w", err)
	}
	p, err := scanPostJoined(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by %s: %w", what, err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "slug", sq.Eq{"p.slug": slug})
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "id", sq.Eq{"p.id": id})
}

// SlugExists reports whether any post already uses slug.
func (s *PostStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// Related returns up to limit other posts from the same category.
func (s *PostStore) Related(ctx context.Context, post *models.Post, limit int) ([]models.Post, error) {
	query, args, err := postSelect().
		Where(sq.Eq{"p.category_id": post.CategoryID}).
		Where(sq.NotEq{"p.id": post.ID}).
		OrderBy("p.published_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build related posts: %w", err)
	}
	posts, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("related posts: %w", err)
	}
	return posts, nil
}

// Create inserts a new post. A zero PublishedAt means now. Returns
// ErrSlugTaken when the slug is already used.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	published := p.PublishedAt
	if published.IsZero() {
		published = time.Now().UTC()
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, excerpt, body, cover_image, published_at,
		                   reading_time, author_id, category_id, is_generated,
		                   related_assets, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`+postReturning,
		p.Title, p.Slug, p.Excerpt, p.Body, p.CoverImage, published,
		p.ReadingTime, p.AuthorID, p.CategoryID, p.IsGenerated,
		pq.Array(nonNil(p.RelatedAssets)), pq.Array(nonNil(p.Tags)),
	)
	created, err := scanPost(row)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update saves the editable fields of p. Returns nil if the post is gone.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, excerpt = $3, body = $4, cover_image = $5,
			reading_time = $6, category_id = $7, related_assets = $8, tags = $9,
			updated_at = NOW()
		WHERE id = $10
		`+postReturning,
		p.Title, p.Slug, p.Excerpt, p.Body, p.CoverImage,
		p.ReadingTime, p.CategoryID, pq.Array(nonNil(p.RelatedAssets)), pq.Array(nonNil(p.Tags)),
		p.ID,
	)
	updated, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// Delete removes a post. Its comments go with it (ON DELETE CASCADE).
// Returns false if no such post.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SitemapEntry is the minimal post data a sitemap needs.
type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// SitemapEntries lists every post slug with its last modification time.
func (s *PostStore) SitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, updated_at FROM posts ORDER BY published_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sitemap posts: %w", err)
	}
	defer rows.Close()

	var entries []SitemapEntry
	for rows.Next() {
		var e SitemapEntry
		if err := rows.Scan(&e.Slug, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sitemap post: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
