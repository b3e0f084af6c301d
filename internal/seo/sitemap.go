// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo builds the sitemap, robots.txt and per-post meta data that
// the reader site renders into its pages.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is a sitemap change frequency.
type ChangeFreq string

const (
	ChangeFreqDaily  ChangeFreq = "daily"
	ChangeFreqWeekly ChangeFreq = "weekly"
)

// SitemapURL is a single <url> entry.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// Entry is a slug with its last modification time.
type Entry struct {
	Slug      string
	UpdatedAt time.Time
}

// SitemapBuilder accumulates URLs for a sitemap.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder for siteURL (no trailing slash needed).
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimRight(siteURL, "/")}
}

func (b *SitemapBuilder) add(path string, updated time.Time, freq ChangeFreq, priority string) {
	u := SitemapURL{Loc: b.siteURL + path, ChangeFreq: freq, Priority: priority}
	if !updated.IsZero() {
		u.LastMod = updated.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, u)
}

// AddHomepage adds the site root.
func (b *SitemapBuilder) AddHomepage() {
	b.add("/", time.Time{}, ChangeFreqDaily, "1.0")
}

// AddPosts adds /posts/<slug> for each post.
func (b *SitemapBuilder) AddPosts(posts []Entry) {
	for _, p := range posts {
		b.add("/posts/"+p.Slug, p.UpdatedAt, ChangeFreqWeekly, "0.8")
	}
}

// AddCategories adds /category/<slug> for each category.
func (b *SitemapBuilder) AddCategories(categories []Entry) {
	for _, c := range categories {
		b.add("/category/"+c.Slug, c.UpdatedAt, ChangeFreqDaily, "0.6")
	}
}

// Build renders the sitemap XML document.
func (b *SitemapBuilder) Build() ([]byte, error) {
	body, err := xml.MarshalIndent(urlset{XMLNS: XMLNamespace, URLs: b.urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// GenerateSitemap builds a sitemap with the homepage, posts and categories.
func GenerateSitemap(siteURL string, posts, categories []Entry) ([]byte, error) {
	b := NewSitemapBuilder(siteURL)
	b.AddHomepage()
	b.AddPosts(posts)
	b.AddCategories(categories)
	return b.Build()
}
