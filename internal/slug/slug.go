// Package slug provides URL-friendly slug generation from arbitrary strings.
// Accented characters are folded to their ASCII base letter so that French
// titles produce clean slugs.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxLen caps slug length to keep URLs readable.
const maxLen = 50

var (
	// nonAlphanumeric matches runs of anything that isn't a letter or digit.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

	// stripAccents decomposes characters and drops the combining marks,
	// turning "é" into "e" and "ç" into "c".
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Été à Majorque, jour 1 !" → "ete-a-majorque-jour-1"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(stripAccents, result); err == nil {
		result = folded
	}
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > maxLen {
		result = strings.Trim(result[:maxLen], "-")
	}
	return result
}

// Valid reports whether s is a well-formed slug: lowercase ASCII letters,
// digits, and single hyphens, never at the edges.
func Valid(s string) bool {
	if s == "" || len(s) > maxLen {
		return false
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
