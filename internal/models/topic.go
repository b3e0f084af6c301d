// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TopicStatus tracks a submitted content idea through review and generation.
type TopicStatus string

const (
	TopicPending   TopicStatus = "pending"
	TopicApproved  TopicStatus = "approved"
	TopicGenerated TopicStatus = "generated"
	TopicRejected  TopicStatus = "rejected"
)

// Valid reports whether s is a known topic status.
func (s TopicStatus) Valid() bool {
	switch s {
	case TopicPending, TopicApproved, TopicGenerated, TopicRejected:
		return true
	}
	return false
}

// Topic is a content idea submitted by a reader, a guest or an admin.
type Topic struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CategoryID   uuid.UUID   `json:"categoryId"`
	SubmittedBy  *uuid.UUID  `json:"submittedBy,omitempty"`
	GuestEmail   *string     `json:"guestEmail,omitempty"`
	Status       TopicStatus `json:"status"`
	ScheduledFor *time.Time  `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// TopicSummary is the projection of a topic embedded in schedules.
type TopicSummary struct {
	ID     uuid.UUID   `json:"id"`
	Title  string      `json:"title"`
	Status TopicStatus `json:"status"`
}
