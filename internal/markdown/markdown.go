// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post bodies from Markdown into sanitised HTML
// and derives reader-facing metrics such as word count and reading time.
// Post bodies may come from an LLM, so rendered output is always passed
// through a bluemonday policy before it leaves the API.
package markdown

import (
	"bytes"
	"strings"
	"unicode"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // raw HTML is allowed in and cleaned by the policy below
	),
)

var (
	// bodyPolicy allows user-generated-content markup plus highlighting classes.
	bodyPolicy = newBodyPolicy()
	// textPolicy strips every tag.
	textPolicy = bluemonday.StrictPolicy()
)

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("pre", "code", "span")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// ToHTML converts Markdown source into sanitised HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return bodyPolicy.Sanitize(buf.String()), nil
}

// StripTags removes all HTML from s and trims surrounding whitespace.
// Comment bodies and guest-submitted text go through here.
func StripTags(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// WordCount counts whitespace-separated words that contain at least one
// letter or digit, so Markdown markers like "##" or "-" are not counted.
func WordCount(s string) int {
	n := 0
	for _, f := range strings.Fields(s) {
		if strings.IndexFunc(f, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			n++
		}
	}
	return n
}

// ReadingTime estimates minutes to read s at WordsPerMinute, rounding up,
// with a minimum of one minute.
func ReadingTime(s string) int {
	words := WordCount(s)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
