// Package slug turns free-text labels such as genres into URL path segments.
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
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	separators      = regexp.MustCompile(`[\s_]+`)
)

// Make lowercases s, strips accents, and joins words with single hyphens, so
// "Ciencia Ficción" becomes "ciencia-ficcion".
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = separators.ReplaceAllString(result, "-")
	result = invalidChars.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// Matches reports whether label and s produce the same non-empty slug.
func Matches(label, s string) bool {
	a := Make(label)
	return a != "" && a == Make(s)
}
