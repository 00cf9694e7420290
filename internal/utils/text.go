// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strings"

// Truncate shortens s to at most max runes, appending "..." when anything
// was cut. It is rune-safe, so multi-byte text is never split mid-character.
//
// Example:
//
//	utils.Truncate("hello world", 5) // "hello..."
//	utils.Truncate("hi", 5)          // "hi"
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// FirstNonBlank returns the first argument that is non-empty after trimming
// whitespace, or "" when all are blank.
func FirstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
