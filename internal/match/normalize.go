// Package match provides name canonicalization, string similarity, and
// near-duplicate clustering for payee names.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	multiSpace  = regexp.MustCompile(`\s{2,}`)
	punctuation = regexp.MustCompile(`[.,;:!?'"()\[\]{}<>*#@\\/|_~` + "`" + `]+`)
)

// stripDiacritics decomposes to NFD and removes combining marks, so that
// "José" and "Jose" normalize identically.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw payee name for matching and caching:
// upper-cased, diacritics stripped, punctuation reduced to spaces, whitespace
// collapsed. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))

	if stripped, _, err := transform.String(stripDiacritics, n); err == nil {
		n = stripped
	}

	// Ampersands join business names ("A & B TRUCKING"); keep them. Hyphens
	// inside names stay too. Everything else collapses to a space.
	n = punctuation.ReplaceAllString(n, " ")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Fold upper-cases, strips diacritics, and collapses whitespace while keeping
// punctuation intact. Used where structure carried by punctuation matters
// ("Smith, John" vs "Smith John"). Idempotent like Normalize.
func Fold(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if stripped, _, err := transform.String(stripDiacritics, n); err == nil {
		n = stripped
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(n, " "))
}
