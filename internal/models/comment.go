// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader comment on a post. Threads are one level deep:
// ParentID, when set, always points at a top-level comment.
type Comment struct {
	ID          uuid.UUID  `json:"id"`
	PostID      uuid.UUID  `json:"postId"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	Content     string     `json:"content"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"-"`
	UserID      *uuid.UUID `json:"userId,omitempty"`
	IsApproved  bool       `json:"isApproved"`
	CreatedAt   time.Time  `json:"createdAt"`

	Replies []Comment `json:"replies,omitempty"`
}

// IsReply reports whether the comment belongs to a parent thread.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// BuildThreads attaches replies to their top-level parents, preserving the
// input order of both slices. Replies whose parent is not in top are dropped.
func BuildThreads(top, replies []Comment) []Comment {
	index := make(map[uuid.UUID]int, len(top))
	threads := make([]Comment, len(top))
	for i, c := range top {
		c.Replies = nil
		threads[i] = c
		index[c.ID] = i
	}
	for _, r := range replies {
		if r.ParentID == nil {
			continue
		}
		if i, ok := index[*r.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, r)
		}
	}
	return threads
}
