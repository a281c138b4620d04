package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccents removes combining marks ("Léon" becomes "Leon").
func FoldAccents(s string) string {
	// Chained transformers keep state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldKey lowercases and folds accents, for case-insensitive comparison.
func FoldKey(s string) string {
	return FoldAccents(strings.ToLower(s))
}

var dashReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"﹣", "-",
	"－", "-",
)

// asciiOnly replaces Unicode spaces with a space and any other non-ASCII
// rune with a hyphen.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r <= unicode.MaxASCII:
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return '-'
		}
	}, s)
}
