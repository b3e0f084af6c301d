// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoImageSupport is returned when the active provider cannot draw.
	ErrNoImageSupport = errors.New("ai: active provider does not support image generation")
	// ErrEmptyImage is returned when a provider answers without image data.
	ErrEmptyImage = errors.New("ai: provider returned no image data")
)

// ImageGenerator is implemented by providers that can draw cover art.
// Only Gemini does, and only when GEMINI_MODEL_IMAGE is set.
type ImageGenerator interface {
	// GenerateImage returns raw image bytes and their MIME type.
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// CoverPrompt builds the image prompt for a post's cover art.
func CoverPrompt(title, category string) string {
	return fmt.Sprintf(
		"A clean editorial illustration for a %s article titled %q. "+
			"Muted dark palette, abstract market motifs. No text, no logos, no faces.",
		category, strings.TrimSpace(title))
}

// GenerateImage draws with the active provider. Responses without image
// bytes or with a non-image MIME type are rejected.
func (r *Registry) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	p, err := r.Active()
	if err != nil {
		return nil, "", err
	}

	ig, ok := p.(ImageGenerator)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNoImageSupport, p.Name())
	}

	data, mime, err := ig.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("ai: %s image: %w", p.Name(), err)
	}
	if len(data) == 0 || (mime != "" && !strings.HasPrefix(mime, "image/")) {
		return nil, "", fmt.Errorf("%w (%s, %q)", ErrEmptyImage, p.Name(), mime)
	}
	return data, mime, nil
}

// SupportsImageGeneration reports whether the active provider can draw.
func (r *Registry) SupportsImageGeneration() bool {
	p, err := r.Active()
	if err != nil {
		return false
	}
	_, ok := p.(ImageGenerator)
	return ok
}
