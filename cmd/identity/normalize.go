package identity

import "strings"

// NormalizeEmail trims surrounding whitespace only. Emails are stored and
// compared exactly as given: lookup and uniqueness are case-sensitive.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeName trims surrounding whitespace.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}
