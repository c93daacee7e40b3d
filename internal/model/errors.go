package model

import "errors"

// Sentinel errors shared by the store, the token code and the service.
// Match them with errors.Is; every layer wraps with its own op prefix.
var (
	// ErrValidation - request input is malformed (empty email, empty password).
	ErrValidation = errors.New("validation error")
	// ErrAlreadyExists - a user with this email is already registered.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials - unknown email or wrong password; callers never learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound - no user with the given id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenMalformed - the token cannot be parsed or decoded.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenBadSignature - the signature does not verify under the expected secret.
	ErrTokenBadSignature = errors.New("token signature invalid")
	// ErrTokenExpired - the token is past its expiry instant.
	ErrTokenExpired = errors.New("token expired")

	// ErrBindingMismatch - the renewal token verifies but is not the one bound to the user.
	ErrBindingMismatch = errors.New("renewal token is not the current binding")
	// ErrNoRenewalToken - refresh was called without a renewal token.
	ErrNoRenewalToken = errors.New("no renewal token presented")
	// ErrAccessDenied - a protected resource was requested without a valid access token.
	ErrAccessDenied = errors.New("access denied")
)

// IsTokenError reports whether err is one of the verification failure kinds.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenBadSignature) ||
		errors.Is(err, ErrTokenExpired)
}
