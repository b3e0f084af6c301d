// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// DefaultTemplateKey names the template used for categories without their own.
const DefaultTemplateKey = "default"

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptData is what a prompt template is rendered with.
type PromptData struct {
	Category    string
	Assets      []string
	Title       string
	Description string
}

// Template is a parsed system/user prompt pair for one category.
type Template struct {
	Key    string
	Assets []string

	system *template.Template
	user   *template.Template
}

// Render executes both prompts with data.
func (t *Template) Render(data PromptData) (system, user string, err error) {
	var sb, ub strings.Builder
	if err := t.system.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render %s system prompt: %w", t.Key, err)
	}
	if err := t.user.Execute(&ub, data); err != nil {
		return "", "", fmt.Errorf("render %s user prompt: %w", t.Key, err)
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(ub.String()), nil
}

// Prompts holds the templates keyed by category slug.
type Prompts struct {
	templates map[string]*Template
}

type promptEntry struct {
	System string   `yaml:"system"`
	User   string   `yaml:"user"`
	Assets []string `yaml:"assets"`
}

var promptFuncs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
}

// LoadPrompts reads templates from path, or the built-in set when path is
// empty.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return ParsePrompts(defaultPrompts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return ParsePrompts(data)
}

// ParsePrompts parses a YAML document of templates. A "default" entry is
// required.
func ParsePrompts(data []byte) (*Prompts, error) {
	var entries map[string]promptEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if _, ok := entries[DefaultTemplateKey]; !ok {
		return nil, fmt.Errorf("parse prompts: missing %q template", DefaultTemplateKey)
	}

	p := &Prompts{templates: make(map[string]*Template, len(entries))}
	for key, e := range entries {
		if strings.TrimSpace(e.System) == "" || strings.TrimSpace(e.User) == "" {
			return nil, fmt.Errorf("parse prompts: %q needs both system and user", key)
		}
		sys, err := template.New(key + ".system").Funcs(promptFuncs).Option("missingkey=error").Parse(e.System)
		if err != nil {
			return nil, fmt.Errorf("parse prompts: %s system: %w", key, err)
		}
		usr, err := template.New(key + ".user").Funcs(promptFuncs).Option("missingkey=error").Parse(e.User)
		if err != nil {
			return nil, fmt.Errorf("parse prompts: %s user: %w", key, err)
		}
		p.templates[key] = &Template{Key: key, Assets: e.Assets, system: sys, user: usr}
	}
	return p, nil
}

// For returns the template for a category slug, falling back to the default.
func (p *Prompts) For(categorySlug string) *Template {
	if t, ok := p.templates[categorySlug]; ok {
		return t
	}
	return p.templates[DefaultTemplateKey]
}
