// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// geminiProvider implements the Provider interface using the Google
// Gemini REST API (POST /v1beta/models/{model}:generateContent).
type geminiProvider struct {
	config ProviderConfig
	client *http.Client
}

func newGemini(cfg ProviderConfig) *geminiProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &geminiProvider{
		config: cfg,
		client: &http.Client{Timeout: RequestTimeout},
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) endpoint(model string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.config.BaseURL, model)
}

func (p *geminiProvider) headers() map[string]string {
	return map[string]string{"x-goog-api-key": p.config.APIKey}
}

// Generate sends a generateContent request using the default model.
func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.GenerateWithModel(ctx, "", systemPrompt, userPrompt)
}

// GenerateWithModel sends a generateContent request using a specific model.
// If model is empty, the provider's default model is used.
func (p *geminiProvider) GenerateWithModel(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	if model == "" {
		model = p.config.Model
	}

	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: userPrompt}}}},
	}

	var result geminiResponse
	if err := postJSON(ctx, p.client, "gemini", p.endpoint(model), p.headers(), body, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", fmt.Errorf("gemini: no text in response")
}

// GenerateImage creates an image with Gemini's native image output
// (responseModalities IMAGE). Requires ModelImage in the config.
func (p *geminiProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	model := p.config.ModelImage
	if model == "" {
		return nil, "", fmt.Errorf("gemini: image generation requires GEMINI_MODEL_IMAGE to be set")
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: "Generate an image of: " + prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	var result geminiResponse
	if err := postJSON(ctx, p.client, "gemini image", p.endpoint(model), p.headers(), body, &result); err != nil {
		return nil, "", err
	}

	for _, c := range result.Candidates {
		for _, part := range c.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			img, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("gemini image decode base64: %w", err)
			}
			contentType := part.InlineData.MimeType
			if contentType == "" {
				contentType = "image/png"
			}
			return img, contentType, nil
		}
	}
	return nil, "", fmt.Errorf("gemini image: no image data in response")
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}
