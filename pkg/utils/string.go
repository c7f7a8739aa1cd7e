package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen bytes and appends "..." when it was
// cut. It never splits a multi-byte rune, so upstream error bodies stay valid
// UTF-8 in logs and JSON.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
