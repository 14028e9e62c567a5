package helpers

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe slug from a human title: lower-case, alphanumeric
// runs joined by single hyphens ("Pind Balluchi, CP" -> "pind-balluchi-cp").
func Slugify(parts ...string) string {
	var b strings.Builder
	lastHyphen := true
	for _, part := range parts {
		for _, r := range strings.ToLower(strings.TrimSpace(part)) {
			switch {
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				b.WriteRune(r)
				lastHyphen = false
			default:
				if !lastHyphen {
					b.WriteRune('-')
					lastHyphen = true
				}
			}
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
