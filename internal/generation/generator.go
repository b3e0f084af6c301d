// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"coinpress/internal/ai"
	"coinpress/internal/markdown"
	"coinpress/internal/models"
	"coinpress/internal/slug"
)

// ErrNotConfigured is returned when no AI provider has credentials.
var ErrNotConfigured = errors.New("generation service is not configured")

// MaxExcerptLength bounds an excerpt derived from the body.
const MaxExcerptLength = 200

// TextGenerator is the LLM capability the generator needs. *ai.Registry
// satisfies it.
type TextGenerator interface {
	Configured() bool
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ImageSource produces cover artwork. *ai.Registry satisfies it.
type ImageSource interface {
	SupportsImageGeneration() bool
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// CoverSaver persists image bytes and returns their public URL.
type CoverSaver interface {
	SaveCover(ctx context.Context, data []byte) (string, error)
}

// Request describes one article to generate.
type Request struct {
	Template    *Template
	Category    *models.Category
	Author      *models.User
	Title       string
	Description string
	Assets      []string // overrides Template.Assets when non-empty
}

// Result is a generated article ready to be stored as a post.
type Result struct {
	Title         string
	Slug          string
	Excerpt       string
	Body          string
	CoverImage    string
	ReadingTime   int
	Tags          []string
	RelatedAssets []string
}

// Generator turns a prompt template into post content via an LLM.
type Generator struct {
	text   TextGenerator
	images ImageSource
	covers CoverSaver
}

// NewGenerator creates a generator backed by text. text may be nil, in
// which case the generator reports itself unconfigured.
func NewGenerator(text TextGenerator) *Generator {
	return &Generator{text: text}
}

// WithCovers enables generated cover art. Without it, or when the active
// provider cannot draw, posts get a per-category placeholder.
func (g *Generator) WithCovers(images ImageSource, covers CoverSaver) *Generator {
	g.images = images
	g.covers = covers
	return g
}

// Configured reports whether generation can run at all.
func (g *Generator) Configured() bool {
	return g != nil && g.text != nil && g.text.Configured()
}

// Generate asks the model for an article and shapes the answer into a
// Result. Any failure returns a nil result.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}
	if req.Template == nil || req.Category == nil {
		return nil, errors.New("generation request needs a template and a category")
	}

	assets := req.Assets
	if len(assets) == 0 {
		assets = req.Template.Assets
	}

	system, user, err := req.Template.Render(PromptData{
		Category:    req.Category.Name,
		Assets:      assets,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	raw, err := g.text.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("generate article: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("generate article: empty response")
	}

	d, err := parseDraft(raw)
	if err != nil {
		return nil, err
	}

	title := d.Title
	if title == "" {
		title = req.Title
	}
	if title == "" {
		return nil, errors.New("generated article has no title")
	}

	tags := normalizeTags(d.Tags)
	if len(tags) == 0 {
		tags = extractTags(d.Body, assets)
	}

	excerpt := d.Excerpt
	if excerpt == "" {
		excerpt = deriveExcerpt(d.Body)
	}

	res := &Result{
		Title:         title,
		Slug:          slug.Generate(title),
		Excerpt:       excerpt,
		Body:          d.Body,
		ReadingTime:   markdown.ReadingTime(d.Body),
		Tags:          tags,
		RelatedAssets: append([]string(nil), assets...),
	}
	if res.Slug == "" {
		res.Slug = slug.WithSuffix("post")
	}
	res.CoverImage = g.cover(ctx, title, req.Category)
	return res, nil
}

// cover returns generated art when possible and the placeholder otherwise.
// Cover failures never fail the article.
func (g *Generator) cover(ctx context.Context, title string, c *models.Category) string {
	if g.images == nil || g.covers == nil || !g.images.SupportsImageGeneration() {
		return PlaceholderCover(c)
	}

	img, _, err := g.images.GenerateImage(ctx, ai.CoverPrompt(title, c.Name))
	if err != nil {
		slog.Warn("cover generation failed, using placeholder", "category", c.Slug, "error", err)
		return PlaceholderCover(c)
	}
	u, err := g.covers.SaveCover(ctx, img)
	if err != nil {
		slog.Warn("cover upload failed, using placeholder", "category", c.Slug, "error", err)
		return PlaceholderCover(c)
	}
	return u
}

// PlaceholderCover is the deterministic cover used when no art is generated.
func PlaceholderCover(c *models.Category) string {
	return "https://placehold.co/1600x900/0f172a/f8fafc/png?text=" + url.QueryEscape(c.Name)
}

// deriveExcerpt takes the first prose paragraph of body as plain text.
func deriveExcerpt(body string) string {
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.ContainsAny(block[:1], "#>|-*`") {
			continue
		}
		text := block
		if rendered, err := markdown.ToHTML(block); err == nil {
			text = html.UnescapeString(markdown.StripTags(rendered))
		}
		text = strings.Join(strings.Fields(text), " ")
		if text != "" {
			return truncateWords(text, MaxExcerptLength)
		}
	}
	return ""
}

// truncateWords cuts s to at most max runes on a word boundary.
func truncateWords(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
