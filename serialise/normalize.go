package serialise

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case and strips diacritics: "Crème Brûlée" becomes
// "creme brulee". Invalid UTF-8 is returned unchanged.
func Normalize(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizeBytes is Normalize for serialised values. Binary encodings (for
// example sortable numbers) are passed through untouched.
func NormalizeBytes(b []byte) []byte {
	if !utf8.Valid(b) {
		return b
	}
	return []byte(Normalize(string(b)))
}
