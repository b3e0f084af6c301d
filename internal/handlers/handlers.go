// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the CoinPress JSON API. Handler groups take
// their stores as narrow interfaces so they can be exercised with
// in-memory fakes; main wires the concrete store types.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coinpress/internal/models"
	"coinpress/internal/respond"
)

// maxJSONBody bounds request bodies for JSON endpoints.
const maxJSONBody = 1 << 20

// decodeJSON reads the request body into dst. It writes a 400 and returns
// false when the body is missing or malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respond.BadRequest(w, "Request body is required")
			return false
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", nil)
			return false
		}
		respond.BadRequest(w, "Invalid JSON body")
		return false
	}
	return true
}

// uuidParam parses the named URL parameter. It writes a 400 and returns
// false when the value is not a UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respond.BadRequest(w, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pageFromQuery reads the page and limit query parameters. Garbage values
// fall back to the defaults.
func pageFromQuery(r *http.Request) models.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("limit"))
	return models.NewPage(number, size)
}

// Paginated list bodies. Each keys its items by resource name.
type postList struct {
	Posts      []models.Post     `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

type scheduleList struct {
	Schedules  []models.GenerationSchedule `json:"schedules"`
	Pagination models.Pagination           `json:"pagination"`
}

type commentList struct {
	Comments   []models.Comment  `json:"comments"`
	Pagination models.Pagination `json:"pagination"`
}

type topicList struct {
	Topics     []models.Topic    `json:"topics"`
	Pagination models.Pagination `json:"pagination"`
}

type userList struct {
	Users      []models.User     `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

// orEmpty keeps empty lists encoding as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
