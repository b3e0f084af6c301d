// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus is the lifecycle of a planned generation.
// pending -> processing -> completed | failed. Terminal states never change.
type ScheduleStatus string

const (
	SchedulePending    ScheduleStatus = "pending"
	ScheduleProcessing ScheduleStatus = "processing"
	ScheduleCompleted  ScheduleStatus = "completed"
	ScheduleFailed     ScheduleStatus = "failed"
)

// Valid reports whether s is a known schedule status.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case SchedulePending, ScheduleProcessing, ScheduleCompleted, ScheduleFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the schedule has finished for good.
func (s ScheduleStatus) IsTerminal() bool {
	return s == ScheduleCompleted || s == ScheduleFailed
}

// GenerationSchedule is a unit of planned AI post generation.
type GenerationSchedule struct {
	ID              uuid.UUID      `json:"id"`
	TopicID         *uuid.UUID     `json:"topicId"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	CategoryID      uuid.UUID      `json:"categoryId"`
	AuthorID        *uuid.UUID     `json:"authorId"`
	ScheduledFor    time.Time      `json:"scheduledFor"`
	Status          ScheduleStatus `json:"status"`
	GeneratedPostID *uuid.UUID     `json:"generatedPostId"`
	ErrorMessage    *string        `json:"errorMessage"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	// Related records populated by list queries.
	Topic         *TopicSummary    `json:"topic,omitempty"`
	Category      *CategorySummary `json:"category,omitempty"`
	Author        *UserSummary     `json:"author,omitempty"`
	GeneratedPost *PostSummary     `json:"generatedPost,omitempty"`
}

// IsDue reports whether a pending schedule should run at now.
func (s *GenerationSchedule) IsDue(now time.Time) bool {
	return s.Status == SchedulePending && !s.ScheduledFor.After(now)
}

// PostSummary is the projection of a post embedded in schedules.
type PostSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}
