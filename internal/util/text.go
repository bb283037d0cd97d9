package util

import "strings"

// SanitizePostgresText strips invalid UTF-8 and NUL bytes, neither of
// which Postgres accepts in text columns.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// CanonicalizeName trims an entity name and collapses internal
// whitespace runs to single spaces. Casing is preserved: graph nodes
// are keyed by the exact canonical name, so "bone loss" and "Bone Loss"
// stay distinct on purpose.
func CanonicalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// TruncateChars cuts s to at most n runes.
func TruncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
