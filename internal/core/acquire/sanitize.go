package acquire

import (
	"strings"
	"unicode"
)

// titlePlaceholder substitutes for titles that sanitize down to nothing.
const titlePlaceholder = "unknown"

// maxTitleRunes bounds generated filenames; most filesystems cap names at
// 255 bytes and CJK runes take 3-4 bytes each.
const maxTitleRunes = 80

// SanitizeTitle reduces a remote video title to a safe filename stem:
// anything outside letters, digits, space, hyphen, and underscore is
// dropped, whitespace is trimmed, and an empty result becomes a placeholder.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > maxTitleRunes {
		out = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	if out == "" {
		return titlePlaceholder
	}
	return out
}
