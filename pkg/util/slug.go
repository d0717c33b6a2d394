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
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsSlug reports whether s is a lowercase, dash-separated URL identifier.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify lowercases s, strips diacritics and collapses everything else
// into single dashes ("Café Iguazú 170g" -> "cafe-iguazu-170g").
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	out := nonSlugRunes.ReplaceAllString(strings.ToLower(stripped), "-")
	return strings.Trim(out, "-")
}
