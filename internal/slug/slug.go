// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Non-ASCII input is transliterated first, so "Société Générale" becomes
// "societe-generale" rather than losing its letters.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// MaxLength caps generated slugs. Cuts happen on a hyphen boundary when one
// exists in the kept prefix.
const MaxLength = 120

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of any whitespace.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid matches a well-formed slug.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Bitcoin Hits $100K!" → "bitcoin-hits-100k"
func Generate(s string) string {
	result := unidecode.Unidecode(strings.TrimSpace(s))
	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = result[:MaxLength]
		if i := strings.LastIndexByte(result, '-'); i > 0 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	return result
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}

// WithSuffix appends a short random hex suffix, used to resolve collisions.
// Example: "btc-outlook" → "btc-outlook-3fa9c1"
func WithSuffix(s string) string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	if s == "" {
		return hex.EncodeToString(b)
	}
	return s + "-" + hex.EncodeToString(b)
}
