package core

import "strings"

// Ellipsis marks a string shortened by Truncate.
const Ellipsis = "..."

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Truncate shortens `s` to at most `budget` visible characters (runes, not bytes)
// and appends Ellipsis if anything was cut off. A non-positive budget yields Ellipsis alone.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return Ellipsis
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + Ellipsis
}
