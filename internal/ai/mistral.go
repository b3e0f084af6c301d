// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

// newMistral creates a Mistral provider. Mistral's chat completions API is
// OpenAI-compatible, so the SDK client is reused with Mistral's base URL.
func newMistral(cfg ProviderConfig) *chatProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	return newChatProvider("mistral", cfg)
}
