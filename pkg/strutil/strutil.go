// Package strutil holds string helpers shared by the output writers.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate cuts s to at most maxLen runes, ending in Ellipsis when cut.
// Never produces invalid UTF-8. maxLen <= 0 yields "".
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-1]) + Ellipsis
}

// FirstLine returns s up to its first newline, with Ellipsis appended when
// more lines follow.
func FirstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimSpace(rest) == "" {
		return line
	}
	return line + " " + Ellipsis
}
