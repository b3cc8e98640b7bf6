package shared

import "strings"

var transliterator = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
)

// Normalize prepares free text for embedding in a generation request.
//
// German umlauts and sharp-s are expanded to their two-letter ASCII forms, then every rune outside printable ASCII
// (0x20 through 0x7E) is dropped. The result is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = transliterator.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r <= 0x7E {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPrintableASCII reports whether every byte of s is in the printable ASCII range.
func IsPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}
