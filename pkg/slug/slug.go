// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// Slugs identify library tags (e.g. "Code Review" becomes "code-review").
// Accents are folded to their base letter; punctuation is dropped rather than
// turned into a separator, so "Don't Panic" becomes "dont-panic".
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// punctuation matches anything that is not a word character, whitespace or hyphen.
	punctuation = regexp.MustCompile(`[^a-z0-9_\s-]+`)
	// separators collapses runs of whitespace, underscores and hyphens.
	separators = regexp.MustCompile(`[\s_-]+`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD and removes combining marks (é → e).
// 2. Lowercases and trims.
// 3. Drops punctuation and non-ASCII characters.
// 4. Collapses whitespace, underscores and hyphens into single hyphens.
// 5. Trims leading/trailing hyphens.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	result = strings.TrimSpace(strings.ToLower(result))
	result = punctuation.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
