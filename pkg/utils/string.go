package utils

import "strings"

// Truncate is a simple string truncate
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// IsBlank reports whether s holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
