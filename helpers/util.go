package helpers

import (
	"strings"
	"unicode/utf8"
)

// CollapseSpaces trims s and replaces every whitespace run with a single space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Ellipsize shortens s to at most max characters. Longer strings are cut to
// max-1 characters, right-trimmed, and terminated with "…".
func Ellipsize(s string, max int) string {
	if max <= 0 || RuneLen(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:max-1]), " \t\r\n") + "…"
}
