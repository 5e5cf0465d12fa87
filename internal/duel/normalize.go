package duel

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalizeText trims and NFC-normalizes user text. ok is false when the
// result is empty or longer than maxRunes.
func normalizeText(s string, maxRunes int) (string, bool) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" || utf8.RuneCountInString(s) > maxRunes {
		return "", false
	}
	return s, true
}
