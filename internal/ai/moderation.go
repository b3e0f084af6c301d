// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the text passes moderation
	Categories []string // flagged category names, empty when safe
}

// Moderator checks reader-submitted text for policy violations before it
// can reach a generation prompt.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

const moderationTimeout = 15 * time.Second

// openAIModerator uses the OpenAI Moderation API (POST /v1/moderations),
// which is free for all OpenAI API key holders.
type openAIModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIModerator(apiKey, baseURL string) *openAIModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIModerator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: moderationTimeout},
	}
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var result moderationResponse
	err := postJSON(ctx, m.client, "openai moderation", m.baseURL+"/moderations",
		map[string]string{"Authorization": "Bearer " + m.apiKey},
		moderationRequest{Model: "omni-moderation-latest", Input: text}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 || !result.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}
	return &ModerationResult{Categories: flaggedCategories(result.Results[0].Categories)}, nil
}

// mistralModerator uses the Mistral Moderation API (POST /v1/moderations).
type mistralModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newMistralModerator(apiKey, baseURL string) *mistralModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	return &mistralModerator{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1"),
		client:  &http.Client{Timeout: moderationTimeout},
	}
}

func (m *mistralModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var result moderationResponse
	err := postJSON(ctx, m.client, "mistral moderation", m.baseURL+"/v1/moderations",
		map[string]string{"Authorization": "Bearer " + m.apiKey},
		moderationRequest{Model: "mistral-moderation-latest", Input: text}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}

	// Mistral has no top-level "flagged" field.
	flagged := flaggedCategories(result.Results[0].Categories)
	return &ModerationResult{Safe: len(flagged) == 0, Categories: flagged}, nil
}

// fallbackModerator asks primary first and switches to secondary for good
// once primary rejects its key (project-scoped OpenAI keys cannot call the
// moderation endpoint).
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator

	mu       sync.Mutex
	degraded bool
}

func newFallbackModerator(primary, secondary Moderator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	f.mu.Lock()
	degraded := f.degraded
	f.mu.Unlock()

	if !degraded {
		res, err := f.primary.CheckSafety(ctx, text)
		var se *StatusError
		if err == nil || !errors.As(err, &se) || !se.authFailure() {
			return res, err
		}
		slog.Warn("primary moderation rejected credentials, switching to fallback", "status", se.StatusCode)
		f.mu.Lock()
		f.degraded = true
		f.mu.Unlock()
	}
	return f.secondary.CheckSafety(ctx, text)
}

// flaggedCategories turns {"hate/threatening": true} into a sorted list of
// readable names like "hate (threatening)".
func flaggedCategories(cats map[string]bool) []string {
	var flagged []string
	for cat, isFlagged := range cats {
		if !isFlagged {
			continue
		}
		display := cat
		if i := strings.Index(display, "/"); i >= 0 {
			display = display[:i] + " (" + display[i+1:] + ")"
		}
		flagged = append(flagged, strings.ReplaceAll(display, "_", " "))
	}
	sort.Strings(flagged)
	return flagged
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}
