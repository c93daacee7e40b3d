package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// BindingDigest is what the credential store keeps for a renewal token:
// the hex SHA-256 of the exact token string.
func BindingDigest(renewalToken string) string {
	sum := sha256.Sum256([]byte(renewalToken))
	return hex.EncodeToString(sum[:])
}

// BindingMatches reports whether renewalToken is the token bound by binding.
// An empty binding never matches.
func BindingMatches(binding string, renewalToken string) bool {
	if binding == "" || renewalToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(binding), []byte(BindingDigest(renewalToken))) == 1
}
