package repository

import "strings"

// normalizeEmail is applied on every write and lookup so that email
// matching is case-insensitive across backends.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
