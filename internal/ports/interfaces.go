package ports

import (
	"AuthTokens_Service/internal/model"
	"context"
)

// CredentialStore holds user records and the per-user renewal binding.
// Implementations must make SetRenewalBinding an atomic single-record write.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, email string, passwordHash string) (*model.User, error)
	SetRenewalBinding(ctx context.Context, userID string, binding string) error
}

// PasswordHasher is an opaque one-way hash/compare capability.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) bool
}

// TokenIssuer mints access and renewal tokens bound to a user id.
type TokenIssuer interface {
	IssueAccessToken(userID string) (model.IssuedToken, error)
	IssueRenewalToken(userID string) (model.IssuedToken, error)
}

// TokenVerifier checks signature and expiry and returns the bound user id.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
	VerifyRenewal(token string) (string, error)
}

// SecurityNotifier receives security events raised during refresh.
type SecurityNotifier interface {
	RenewalReplay(ctx context.Context, userID string, remoteAddr string)
}
