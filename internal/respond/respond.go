// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package respond writes JSON API responses and the standard error
// envelope: {"error": {"code": "...", "message": "...", "details": {...}}}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Message is a body for operations that return no entity.
type Message struct {
	Message string `json:"message"`
}

// debug exposes internal error text in 500 bodies. Set once at startup.
var debug bool

// SetDebug toggles inclusion of internal error text in 500 responses.
// Only development servers should enable it.
func SetDebug(on bool) {
	debug = on
}

// JSON writes data as JSON with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode json response", "error", err)
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	JSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "bad_request", message, nil)
}

// ValidationError writes a 400 response with per-field messages.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	Error(w, http.StatusBadRequest, "validation_error", "Validation failed", fields)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "forbidden", message, nil)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "not_found", message, nil)
}

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "conflict", message, nil)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
}

// ServiceUnavailable writes a 503 response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, "unavailable", message, nil)
}

// InternalError logs err and writes a generic 500 response. The error text
// is only included when debug output is enabled.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	msg := "Internal server error"
	if debug && err != nil {
		msg = err.Error()
	}
	Error(w, http.StatusInternalServerError, "internal_error", msg, nil)
}
