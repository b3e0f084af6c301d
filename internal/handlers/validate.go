// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"coinpress/internal/slug"
)

// Validation limits for user input.
const (
	minUsernameLen    = 3
	maxUsernameLen    = 50
	minPasswordLen    = 8
	maxPasswordLen    = 72 // bcrypt ignores anything longer
	maxDisplayNameLen = 100
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxBodyLen        = 100_000
	maxExcerptLen     = 1_000
	maxNameLen        = 100
	maxDescriptionLen = 2_000
	maxCommentLen     = 5_000
	maxTagCount       = 20
	maxTagLen         = 50
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) empty() bool {
	return len(f) == 0
}

// required checks that s has non-blank content of at most max runes.
func (f fieldErrors) required(field, s string, max int) {
	s = strings.TrimSpace(s)
	if s == "" {
		f.add(field, "is required")
		return
	}
	f.maxLen(field, s, max)
}

func (f fieldErrors) maxLen(field, s string, max int) {
	if utf8.RuneCountInString(s) > max {
		f.add(field, "is too long")
	}
}

func (f fieldErrors) email(field, s string) {
	if !validEmail(s) {
		f.add(field, "must be a valid email address")
	}
}

func (f fieldErrors) password(field, s string) {
	n := utf8.RuneCountInString(s)
	switch {
	case n < minPasswordLen:
		f.add(field, "must be at least 8 characters")
	case len(s) > maxPasswordLen:
		f.add(field, "must be at most 72 bytes")
	}
}

func (f fieldErrors) slug(field, s string) {
	if s == "" {
		return
	}
	if len(s) > maxSlugLen || !slug.Valid(s) {
		f.add(field, "must contain only lowercase letters, digits and hyphens")
	}
}

func (f fieldErrors) tags(field string, tags []string) {
	if len(tags) > maxTagCount {
		f.add(field, "has too many entries")
		return
	}
	for _, t := range tags {
		if strings.TrimSpace(t) == "" || utf8.RuneCountInString(t) > maxTagLen {
			f.add(field, "contains an invalid entry")
			return
		}
	}
}

// validEmail accepts a bare address (no display name).
func validEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, ".")
}

// validUsername allows letters, digits, dots, hyphens and underscores.
func validUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minUsernameLen || n > maxUsernameLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
