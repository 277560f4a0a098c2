package slug

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the Unicode case folded form of s, so "FICCIÓN" and "Ficción"
// fold to the same string. Accents are kept.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// ContainsFold reports whether substr is within s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}
