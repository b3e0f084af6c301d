// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinpress/internal/respond"
	"coinpress/internal/seo"
)

// SEO serves the sitemap, robots.txt and per-post meta data.
type SEO struct {
	posts      PostStore
	categories CategoryStore
	site       seo.SiteConfig
	production bool
}

// NewSEO creates a new SEO handler group. Outside production robots.txt
// blocks every crawler.
func NewSEO(posts PostStore, categories CategoryStore, site seo.SiteConfig, production bool) *SEO {
	return &SEO{posts: posts, categories: categories, site: site, production: production}
}

// Sitemap renders sitemap.xml.
func (h *SEO) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.SitemapEntries(r.Context())
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	cats, err := h.categories.List(r.Context())
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}

	postEntries := make([]seo.Entry, len(posts))
	for i, p := range posts {
		postEntries[i] = seo.Entry{Slug: p.Slug, UpdatedAt: p.UpdatedAt}
	}
	catEntries := make([]seo.Entry, len(cats))
	for i, c := range cats {
		catEntries[i] = seo.Entry{Slug: c.Slug, UpdatedAt: c.UpdatedAt}
	}

	body, err := seo.GenerateSitemap(h.site.SiteURL, postEntries, catEntries)
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// Robots renders robots.txt.
func (h *SEO) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.site.SiteURL, !h.production)))
}

// PostMeta returns head tags and JSON-LD for a post.
func (h *SEO) PostMeta(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	if p == nil {
		respond.NotFound(w, "Post not found")
		return
	}
	respond.OK(w, seo.BuildPostMeta(p, h.site))
}
