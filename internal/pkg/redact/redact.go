// Package redact masks sensitive values before they reach the logs.
package redact

import "strings"

// Email keeps the first rune of the local part and the whole domain:
// "alice@example.com" -> "a***@example.com". Anything that does not look
// like a single-@ address is fully masked.
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	at := strings.IndexByte(s, '@')
	local, domain := []rune(s[:at]), s[at+1:]
	if len(local) < 2 {
		return "***@" + domain
	}

	return string(local[:1]) + "***@" + domain
}

// Token is the placeholder logged instead of a token value.
func Token() string { return "[REDACTED_TOKEN]" }
