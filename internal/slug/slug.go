// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation for
// page and form slugs. Page slugs may be nested ("tax-solutions/services").
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace collapses runs of spaces, tabs and newlines.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// segment is one valid path component of a slug.
	segment = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// MaxLength is the longest slug accepted, matching the pages.slug column.
const MaxLength = 200

// Generate creates a URL-friendly slug from the given string. Accents are
// folded to their base letter before anything non-alphanumeric is dropped.
// Example: "Résumé Review, 2026!" → "resume-review-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Path normalizes a possibly nested slug: each "/"-separated segment is
// passed through Generate and empty segments are dropped.
// Example: "/Tax Solutions//Services/" → "tax-solutions/services"
func Path(s string) string {
	var parts []string
	for _, p := range strings.Split(s, "/") {
		if g := Generate(p); g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, "/")
}

// Valid reports whether s is already a well-formed, possibly nested slug.
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength {
		return false
	}
	for _, p := range strings.Split(s, "/") {
		if !segment.MatchString(p) {
			return false
		}
	}
	return true
}

// fold strips combining marks after canonical decomposition, so "é"
// becomes "e". Characters without a decomposition pass through unchanged.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
