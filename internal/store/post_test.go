// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinpress/internal/models"
)

var joinedPostColumns = []string{
	"id", "title", "slug", "excerpt", "body", "cover_image",
	"published_at", "reading_time", "author_id", "category_id",
	"is_generated", "related_assets", "tags", "created_at", "updated_at",
	"username", "display_name", "name", "slug", "icon",
}

func TestPostStoreListAppliesFilters(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)

	postID, authorID, catID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p JOIN categories c ON c.id = p.category_id WHERE \(c.slug = \$1 AND \$2 = ANY\(p.tags\) AND \(p.title ILIKE \$3 OR p.excerpt ILIKE \$4\)\)`).
		WithArgs("crypto", "btc", "%halving%", "%halving%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT p.id, .* FROM posts p JOIN users u .* JOIN categories c .* ORDER BY p.published_at DESC, p.created_at DESC LIMIT 10 OFFSET 10`).
		WithArgs("crypto", "btc", "%halving%", "%halving%").
		WillReturnRows(sqlmock.NewRows(joinedPostColumns).AddRow(
			postID.String(), "Halving Recap", "halving-recap", "ex", "body", "",
			now, 3, authorID.String(), catID.String(),
			true, "{BTC}", "{btc,halving}", now, now,
			"satoshi", "", "Crypto", "crypto", "bitcoin",
		))

	posts, total, err := s.List(context.Background(),
		PostFilter{CategorySlug: "crypto", Tag: "btc", Query: "halving"},
		models.NewPage(2, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, postID, p.ID)
	assert.Equal(t, []string{"BTC"}, p.RelatedAssets)
	assert.Equal(t, []string{"btc", "halving"}, p.Tags)
	require.NotNil(t, p.Author)
	assert.Equal(t, "satoshi", p.Author.DisplayName, "display name falls back to username")
	require.NotNil(t, p.Category)
	assert.Equal(t, "crypto", p.Category.Slug)
}

func TestPostStoreCreateSlugTaken(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)

	mock.ExpectQuery(`INSERT INTO posts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"})

	_, err := s.Create(context.Background(), &models.Post{Title: "BTC", Slug: "btc"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestPostStoreFindBySlugMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)

	mock.ExpectQuery(`SELECT .* WHERE p.slug = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(joinedPostColumns))

	p, err := s.FindBySlug(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

// Integration: create, filter, relate and delete posts.
func TestPostStoreLifecycle(t *testing.T) {
	db := testDB(t)
	fx := newFixture(t, db)
	ctx := context.Background()
	s := NewPostStore(db)

	first, err := s.Create(ctx, &models.Post{
		Title:         "ETH Merge Anniversary",
		Slug:          "eth-merge-" + fx.category.Slug,
		Body:          "Proof of stake one year on.",
		ReadingTime:   1,
		AuthorID:      fx.user.ID,
		CategoryID:    fx.category.ID,
		IsGenerated:   true,
		RelatedAssets: []string{"ETH"},
		Tags:          []string{"ethereum", "staking"},
	})
	require.NoError(t, err)
	assert.True(t, first.IsGenerated)
	assert.Equal(t, []string{"ETH"}, first.RelatedAssets)
	assert.False(t, first.PublishedAt.IsZero())

	second, err := s.Create(ctx, &models.Post{
		Title:      "Staking Yields",
		Slug:       "staking-" + fx.category.Slug,
		Body:       "Yields compared.",
		AuthorID:   fx.user.ID,
		CategoryID: fx.category.ID,
		Tags:       []string{"staking"},
	})
	require.NoError(t, err)

	_, err = s.Create(ctx, &models.Post{
		Title: "dup", Slug: first.Slug, AuthorID: fx.user.ID, CategoryID: fx.category.ID,
	})
	assert.ErrorIs(t, err, ErrSlugTaken)

	byTag, total, err := s.List(ctx, PostFilter{CategorySlug: fx.category.Slug, Tag: "ethereum"}, models.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byTag, 1)
	assert.Equal(t, first.ID, byTag[0].ID)

	related, err := s.Related(ctx, first, 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, second.ID, related[0].ID)

	exists, err := s.SlugExists(ctx, first.Slug)
	require.NoError(t, err)
	assert.True(t, exists)

	ok, err := s.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
