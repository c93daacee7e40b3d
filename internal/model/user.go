package model

import "time"

// User is one credential record.
// RenewalBinding holds the digest of the single renewal token currently
// accepted for the user; an empty value means no active session.
type User struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	RenewalBinding string    `db:"renewal_token_hash"`
	CreatedAt      time.Time `db:"created_at"`
}

// HasSession reports whether a renewal token is currently bound.
func (u *User) HasSession() bool {
	return u.RenewalBinding != ""
}
