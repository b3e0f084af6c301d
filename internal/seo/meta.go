// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package seo

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"coinpress/internal/markdown"
	"coinpress/internal/models"
)

// MaxDescriptionLength is the usual search snippet length.
const MaxDescriptionLength = 160

// SiteConfig holds site-wide SEO settings.
type SiteConfig struct {
	SiteName string
	SiteURL  string
}

// Meta is everything the reader site needs for a post's <head>.
type Meta struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Keywords      string         `json:"keywords,omitempty"`
	Canonical     string         `json:"canonical"`
	Robots        string         `json:"robots"`
	OGTitle       string         `json:"ogTitle"`
	OGDescription string         `json:"ogDescription"`
	OGImage       string         `json:"ogImage,omitempty"`
	OGType        string         `json:"ogType"`
	OGSiteName    string         `json:"ogSiteName"`
	OGURL         string         `json:"ogUrl"`
	TwitterCard   string         `json:"twitterCard"`
	JSONLD        *ArticleSchema `json:"jsonLd"`
}

// ArticleSchema is JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	DatePublished    string        `json:"datePublished,omitempty"`
	DateModified     string        `json:"dateModified,omitempty"`
	Author           *PersonSchema `json:"author,omitempty"`
	Publisher        *OrgSchema    `json:"publisher,omitempty"`
	MainEntityOfPage string        `json:"mainEntityOfPage,omitempty"`
	ArticleSection   string        `json:"articleSection,omitempty"`
	Keywords         string        `json:"keywords,omitempty"`
}

// PersonSchema is JSON-LD Person structured data.
type PersonSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OrgSchema is JSON-LD Organization structured data.
type OrgSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// BuildPostMeta derives meta tags and structured data for a post. The post
// should carry its Author and Category summaries.
func BuildPostMeta(p *models.Post, site SiteConfig) *Meta {
	base := strings.TrimRight(site.SiteURL, "/")
	canonical := base + "/posts/" + p.Slug

	desc := p.Excerpt
	if desc == "" {
		if rendered, err := markdown.ToHTML(p.Body); err == nil {
			desc = html.UnescapeString(markdown.StripTags(rendered))
		}
	}
	desc = truncateText(strings.Join(strings.Fields(desc), " "), MaxDescriptionLength)

	image := makeAbsoluteURL(p.CoverImage, base)
	keywords := strings.Join(append(append([]string{}, p.Tags...), p.RelatedAssets...), ", ")

	m := &Meta{
		Title:         p.Title + " | " + site.SiteName,
		Description:   desc,
		Keywords:      keywords,
		Canonical:     canonical,
		Robots:        "index,follow",
		OGTitle:       p.Title,
		OGDescription: desc,
		OGImage:       image,
		OGType:        "article",
		OGSiteName:    site.SiteName,
		OGURL:         canonical,
		TwitterCard:   "summary_large_image",
	}

	schema := &ArticleSchema{
		Context:          "https://schema.org",
		Type:             "Article",
		Headline:         p.Title,
		Description:      desc,
		Image:            image,
		Publisher:        &OrgSchema{Type: "Organization", Name: site.SiteName},
		MainEntityOfPage: canonical,
		Keywords:         keywords,
	}
	if !p.PublishedAt.IsZero() {
		schema.DatePublished = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		schema.DateModified = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if p.Author != nil {
		schema.Author = &PersonSchema{Type: "Person", Name: p.Author.DisplayName}
	}
	if p.Category != nil {
		schema.ArticleSection = p.Category.Name
	}
	m.JSONLD = schema
	return m
}

// makeAbsoluteURL prefixes relative paths with base.
func makeAbsoluteURL(u, base string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return base + "/" + strings.TrimLeft(u, "/")
}

// truncateText cuts s to max runes on a word boundary.
func truncateText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	cut := string([]rune(s)[:max-3])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
