package flexfield

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HashKey normalizes free-form metadata text into a stable key for hashing:
//  1. trim and lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. collapse runs of whitespace to a single space
//
// Concept and attribute strings drift across vintages in casing, spacing, and
// the occasional accented character; hashing the normalized form keeps those
// spellings from producing distinct hash columns.
func HashKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		// Transform failures only occur on invalid UTF-8; fall back to the
		// lowercased input so the hash is still deterministic.
		ascii = s
	}

	return strings.Join(strings.Fields(ascii), " ")
}
