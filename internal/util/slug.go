// Package util holds small helpers shared across packages.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid     = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphenRuns  = regexp.MustCompile(`-{2,}`)
	slugWhitespaces = regexp.MustCompile(`[\s_]+`)
)

// Slugify converts a name into a lowercase ASCII URL segment.
// Accents are stripped ("Philæ Temple" -> "phil-temple", "Kôm Ombo" -> "kom-ombo").
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = strings.ToLower(result)
	result = slugWhitespaces.ReplaceAllString(result, "-")
	result = slugInvalid.ReplaceAllString(result, "")
	result = slugHyphenRuns.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s is a non-empty slug of lowercase letters, digits and single hyphens.
func IsValidSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
