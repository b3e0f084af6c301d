// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a named taxonomy node. Posts, topics and generation
// schedules each reference exactly one category.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Virtual field populated by list queries.
	PostCount int `json:"postCount"`
}

// CategorySummary is the projection of a category embedded in other records.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Icon string    `json:"icon,omitempty"`
}

// Summary returns the embedded projection of the category.
func (c *Category) Summary() *CategorySummary {
	return &CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug, Icon: c.Icon}
}
