package pagecontent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// GenerateSlug derives a URL slug from a display name: lowercase, diacritics
// stripped, non-word characters dropped, whitespace runs collapsed into
// single underscores, and the given prefix prepended. The mapping is lossy
// and non-reversible; the same input always yields the same output.
func GenerateSlug(name, prefix string) string {
	lowered := strings.ToLower(name)

	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "_")
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	slug = strings.Trim(slug, "_")

	return prefix + slug
}
