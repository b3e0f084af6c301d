// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// chatProvider implements Provider on top of the official OpenAI SDK.
// Any OpenAI-compatible chat completions API (Mistral included) is reached
// by pointing it at a different base URL.
type chatProvider struct {
	name   string
	config ProviderConfig
	client openai.Client
}

func newChatProvider(name string, cfg ProviderConfig) *chatProvider {
	return &chatProvider{
		name:   name,
		config: cfg,
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithRequestTimeout(RequestTimeout),
			option.WithMaxRetries(0),
		),
	}
}

// newOpenAI creates a provider for the OpenAI chat completions API.
func newOpenAI(cfg ProviderConfig) *chatProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return newChatProvider("openai", cfg)
}

func (p *chatProvider) Name() string { return p.name }

// Generate sends a chat completion request and returns the assistant's reply.
func (p *chatProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.GenerateWithModel(ctx, "", systemPrompt, userPrompt)
}

// GenerateWithModel sends a chat completion request using a specific model.
// If model is empty, the provider's default model is used.
func (p *chatProvider) GenerateWithModel(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	if model == "" {
		model = p.config.Model
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Provider: p.name, StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		}
		return "", fmt.Errorf("%s chat: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}
