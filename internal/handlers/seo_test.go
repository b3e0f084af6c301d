// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinpress/internal/models"
	"coinpress/internal/seo"
)

var testSite = seo.SiteConfig{SiteName: "CoinPress", SiteURL: "https://coinpress.test"}

func newSEOHarness(production bool) *SEO {
	crypto := &models.Category{ID: uuid.New(), Name: "Crypto", Slug: "crypto", UpdatedAt: time.Now()}
	posts := &memPosts{}
	posts.add(&models.Post{
		Title: "Solana outage", Slug: "solana-outage", Excerpt: "What happened.",
		Category: crypto.Summary(), Tags: []string{"solana"},
		UpdatedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	})
	return NewSEO(posts, newMemCategories(crypto), testSite, production)
}

func TestSEOSitemap(t *testing.T) {
	h := newSEOHarness(true)

	rec := call(t, h.Sitemap, http.MethodGet, "/sitemap.xml", "/sitemap.xml", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://coinpress.test/</loc>")
	assert.Contains(t, body, "<loc>https://coinpress.test/posts/solana-outage</loc>")
	assert.Contains(t, body, "<lastmod>2026-05-01T08:00:00Z</lastmod>")
	assert.Contains(t, body, "<loc>https://coinpress.test/category/crypto</loc>")
}

func TestSEORobots(t *testing.T) {
	rec := call(t, newSEOHarness(true).Robots, http.MethodGet, "/robots.txt", "/robots.txt", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /api/")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://coinpress.test/sitemap.xml")

	rec = call(t, newSEOHarness(false).Robots, http.MethodGet, "/robots.txt", "/robots.txt", nil, nil)
	assert.Equal(t, "User-agent: *\nDisallow: /\n", rec.Body.String())
}

func TestSEOPostMeta(t *testing.T) {
	h := newSEOHarness(true)
	route := "/api/seo/posts/{slug}"

	rec := call(t, h.PostMeta, http.MethodGet, route, "/api/seo/posts/solana-outage", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeBody[seo.Meta](t, rec)
	assert.Equal(t, "Solana outage | CoinPress", meta.Title)
	assert.Equal(t, "What happened.", meta.Description)
	assert.Equal(t, "https://coinpress.test/posts/solana-outage", meta.Canonical)

	rec = call(t, h.PostMeta, http.MethodGet, route, "/api/seo/posts/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
