// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published article, written by an admin or produced by the
// generation pipeline. Body is Markdown.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Body          string    `json:"body"`
	CoverImage    string    `json:"coverImage"`
	PublishedAt   time.Time `json:"publishedAt"`
	ReadingTime   int       `json:"readingTime"` // minutes
	AuthorID      uuid.UUID `json:"authorId"`
	CategoryID    uuid.UUID `json:"categoryId"`
	IsGenerated   bool      `json:"isGenerated"`
	RelatedAssets []string  `json:"relatedAssets"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Virtual fields populated by store joins and handlers.
	Author   *UserSummary     `json:"author,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
	BodyHTML string           `json:"bodyHtml,omitempty"`
}
