package ui

import (
	"strings"
	"unicode/utf8"
)

func truncateInline(s string, max int) string {
	if max <= 0 || runeLen(s) <= max {
		return s
	}
	if max <= 3 {
		return truncateRunes(s, max)
	}
	return truncateRunes(s, max-3) + "..."
}

// runeLen counts runes so we don't under/over-pad UTF-8 text.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runeLen(s) <= n {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for _, r := range s {
		if i >= n {
			break
		}
		b.WriteRune(r)
		i++
	}
	return b.String()
}
