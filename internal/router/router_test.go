// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinpress/internal/generation"
	"coinpress/internal/handlers"
	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/seo"
	"coinpress/internal/session"
)

const cronSecret = "s3cret"

type users map[uuid.UUID]*models.User

func (u users) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return u[id], nil
}

type runner struct{ calls int }

func (r *runner) RunDue(context.Context) (*generation.RunSummary, error) {
	r.calls++
	return &generation.RunSummary{Message: "No scheduled posts due", Results: []generation.ItemResult{}}, nil
}

type harness struct {
	router   chi.Router
	sessions *session.Manager
	users    users
	runner   *runner
}

func newHarness() *harness {
	h := &harness{
		sessions: session.NewManager("router-test-secret", time.Hour, false, nil),
		users:    users{},
		runner:   &runner{},
	}
	h.router = New(Deps{
		Sessions:   h.sessions,
		Users:      h.users,
		CronSecret: cronSecret,
		Generation: handlers.NewGeneration(nil, h.runner),
		SEO:        handlers.NewSEO(nil, nil, seo.SiteConfig{SiteName: "CoinPress", SiteURL: "https://coinpress.test"}, true),
	})
	return h
}

func (h *harness) token(t *testing.T, isAdmin bool) string {
	t.Helper()
	u := &models.User{ID: uuid.New(), Username: "u", IsAdmin: isAdmin}
	h.users[u.ID] = u
	raw, _, err := h.sessions.Issue(u.ID, isAdmin)
	require.NoError(t, err)
	return raw
}

func (h *harness) do(method, path, token string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newHarness()
	rec := h.do(http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRobots(t *testing.T) {
	rec := newHarness().do(http.MethodGet, "/robots.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "Disallow: /cron/")
}

func TestCronRoutes(t *testing.T) {
	h := newHarness()

	for _, path := range []string{"/cron/daily-generate", "/api/cron/daily-generate"} {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := h.do(method, path, "", nil)
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s without secret", method, path)

			rec = h.do(method, path, "", map[string]string{middleware.CronSecretHeader: "wrong"})
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s wrong secret", method, path)

			rec = h.do(method, path, "", map[string]string{middleware.CronSecretHeader: cronSecret})
			assert.Equal(t, http.StatusOK, rec.Code, "%s %s", method, path)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		}
	}
	assert.Equal(t, 4, h.runner.calls, "rejected requests never reach the processor")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newHarness()
	reader := h.token(t, false)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/categories"},
		{http.MethodGet, "/api/comments"},
		{http.MethodGet, "/api/topics"},
		{http.MethodGet, "/api/generation/schedule"},
		{http.MethodDelete, "/api/generation/schedule/" + uuid.NewString()},
		{http.MethodPost, "/api/uploads/cover"},
		{http.MethodPost, "/api/auth/2fa/setup"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, h.do(rt.method, rt.path, "", nil).Code)
			assert.Equal(t, http.StatusForbidden, h.do(rt.method, rt.path, reader, nil).Code)
		})
	}
}

func TestAuthenticatedRoutes(t *testing.T) {
	h := newHarness()
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPut, "/api/auth/profile", "", nil).Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := newHarness().do(http.MethodGet, "/wp-admin", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
