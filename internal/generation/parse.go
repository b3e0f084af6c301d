// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxTags caps the tags kept on a generated post.
const MaxTags = 8

// draft is the JSON object the model is asked to return.
type draft struct {
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
}

var errNoJSON = errors.New("no JSON object in model response")

// parseDraft recovers the article JSON from a model response. Models often
// wrap it in a ```json fence or a sentence of prose.
func parseDraft(raw string) (*draft, error) {
	text := stripFence(strings.TrimSpace(raw))

	var d draft
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, errNoJSON
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &d); err != nil {
			return nil, fmt.Errorf("decode model response: %w", err)
		}
	}

	d.Title = strings.TrimSpace(d.Title)
	d.Excerpt = strings.TrimSpace(d.Excerpt)
	d.Body = strings.TrimSpace(d.Body)
	if d.Body == "" {
		return nil, errors.New("model response has an empty body")
	}
	return &d, nil
}

// stripFence removes a surrounding Markdown code fence, if any.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

var hashtagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_-]{1,30})\b`)

// normalizeTags lowercases, trims '#' and de-duplicates tags, keeping order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(t), "#")))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// extractTags derives tags from #hashtags in body and from the assets the
// body actually mentions.
func extractTags(body string, assets []string) []string {
	var tags []string
	for _, m := range hashtagRe.FindAllStringSubmatch(body, -1) {
		tags = append(tags, m[1])
	}
	for _, a := range assets {
		if mentions(body, a) {
			tags = append(tags, a)
		}
	}
	return normalizeTags(tags)
}

// mentions reports whether ticker appears in body as a whole word.
func mentions(body, ticker string) bool {
	if ticker == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(ticker) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(body)
}
