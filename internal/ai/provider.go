// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface over the LLM providers used to
// draft blog posts (OpenAI, Gemini, Claude, Mistral). Each provider
// implements Provider, and the Registry selects the active one by name.
package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// RequestTimeout bounds a single provider HTTP call. Long-form article
// generation routinely takes over a minute.
const RequestTimeout = 120 * time.Second

// Provider defines the interface that all AI providers must implement.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the generated text.
	// systemPrompt sets the model's behaviour; userPrompt is the request.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey     string
	Model      string
	ModelImage string // optional; enables cover image generation where supported
	BaseURL    string
}

// Registry manages available AI providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	moderator Moderator // nil when no moderation API is available
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are skipped.
// OpenAI's free moderation API is preferred for prompt screening, with
// Mistral's endpoint as fallback.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "gemini":
			r.providers[name] = newGemini(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}

	openaiCfg := configs["openai"]
	mistralCfg := configs["mistral"]
	hasOpenAI := openaiCfg.APIKey != ""
	hasMistral := mistralCfg.APIKey != ""

	switch {
	case hasOpenAI && hasMistral:
		r.moderator = newFallbackModerator(
			newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL),
			newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL),
		)
	case hasOpenAI:
		r.moderator = newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL)
	case hasMistral:
		r.moderator = newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL)
	}

	return r
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// Configured reports whether the active provider has credentials.
// A nil registry is never configured.
func (r *Registry) Configured() bool {
	if r == nil {
		return false
	}
	_, err := r.Active()
	return err == nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all providers that have API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a provider in the registry.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// SetModerator replaces the prompt moderator. A nil moderator disables
// screening.
func (r *Registry) SetModerator(m Moderator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// CheckPrompt runs text through the moderation API. When no moderator is
// configured the text is reported safe; providers still apply their own
// filters at generation time.
func (r *Registry) CheckPrompt(ctx context.Context, text string) (*ModerationResult, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return m.CheckSafety(ctx, text)
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
