package model

import "time"

// IssuedToken is a freshly signed token together with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Session is what a successful login or refresh hands to the transport:
// the access token goes into the response body, the renewal token into the
// restricted cookie.
type Session struct {
	UserID       string
	Email        string
	AccessToken  IssuedToken
	RenewalToken IssuedToken
}

// RefreshResult is the outcome of a refresh attempt.
// Active is the only thing a caller should act on. Reason records why a
// refresh was refused and is meant for logs and tests.
type RefreshResult struct {
	Active  bool
	Session Session
	Reason  error
}

// NoSession builds an inactive refresh result.
func NoSession(reason error) RefreshResult {
	return RefreshResult{Reason: reason}
}
