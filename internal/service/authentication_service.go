package service

import (
	"AuthTokens_Service/internal/metrics"
	"AuthTokens_Service/internal/model"
	"AuthTokens_Service/internal/pkg/log"
	"AuthTokens_Service/internal/pkg/redact"
	"AuthTokens_Service/internal/ports"
	"AuthTokens_Service/internal/security"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

// AuthenticationService runs registration, login, renewal token rotation
// and logout on top of a credential store and the token issuer/verifier.
type AuthenticationService struct {
	Users    ports.CredentialStore
	Hasher   ports.PasswordHasher
	Issuer   ports.TokenIssuer
	Verifier ports.TokenVerifier

	// Optional.
	Notifier ports.SecurityNotifier
	Metrics  *metrics.Metrics

	// RevokeBindingOnLogout clears the server-side binding when the
	// presented renewal token is the current one.
	RevokeBindingOnLogout bool
}

func NewAuthenticationService(
	users ports.CredentialStore,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	verifier ports.TokenVerifier,
) *AuthenticationService {
	return &AuthenticationService{
		Users:    users,
		Hasher:   hasher,
		Issuer:   issuer,
		Verifier: verifier,
	}
}

func (service *AuthenticationService) Register(ctx context.Context, email string, password string) (*model.User, error) {
	const op = "service.AuthenticationService.Register"

	email = normalizeEmail(email)
	logger := log.From(ctx).With("op", op, "email", redact.Email(email))

	if err := validateCredentials(email, password); err != nil {
		service.Metrics.Registration(metrics.ResultRejected)
		logger.Info("register_rejected", "reason", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	passwordHash, err := service.Hasher.Hash(password)
	if err != nil {
		service.Metrics.Registration(metrics.ResultError)
		logger.Error("password_hash_failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := service.Users.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			service.Metrics.Registration(metrics.ResultRejected)
			logger.Info("register_rejected", "reason", "duplicate_email")
		} else {
			service.Metrics.Registration(metrics.ResultError)
			logger.Error("user_create_failed", "err", err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	service.Metrics.Registration(metrics.ResultSuccess)
	logger.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// Login never tells the caller whether the email or the password was wrong;
// only the log records which.
func (service *AuthenticationService) Login(ctx context.Context, email string, password string) (*model.Session, error) {
	const op = "service.AuthenticationService.Login"

	email = normalizeEmail(email)
	logger := log.From(ctx).With("op", op, "email", redact.Email(email))

	if email == "" || password == "" {
		service.Metrics.Login(metrics.ResultRejected)
		logger.Info("login_rejected", "reason", "empty_credentials")
		return nil, fmt.Errorf("%s: %w", op, model.ErrInvalidCredentials)
	}

	user, err := service.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			service.Metrics.Login(metrics.ResultRejected)
			logger.Info("login_rejected", "reason", "unknown_email")
			return nil, fmt.Errorf("%s: %w", op, model.ErrInvalidCredentials)
		}
		service.Metrics.Login(metrics.ResultError)
		logger.Error("user_lookup_failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !service.Hasher.Compare(user.PasswordHash, password) {
		service.Metrics.Login(metrics.ResultRejected)
		logger.Info("login_rejected", "reason", "wrong_password", "user_id", user.ID)
		return nil, fmt.Errorf("%s: %w", op, model.ErrInvalidCredentials)
	}

	session, err := service.startSession(ctx, user)
	if err != nil {
		service.Metrics.Login(metrics.ResultError)
		logger.Error("session_start_failed", "user_id", user.ID, "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	service.Metrics.Login(metrics.ResultSuccess)
	logger.Info("user_logged_in", "user_id", user.ID)
	return session, nil
}

// Refresh rotates the session bound to renewalToken. Every refusal is an
// inactive result with a nil error; the error is reserved for store and
// signing failures.
func (service *AuthenticationService) Refresh(ctx context.Context, renewalToken string) (model.RefreshResult, error) {
	const op = "service.AuthenticationService.Refresh"

	logger := log.From(ctx).With("op", op)

	if renewalToken == "" {
		service.Metrics.Refresh(metrics.ResultRejected)
		logger.Debug("refresh_rejected", "reason", "no_token")
		return model.NoSession(model.ErrNoRenewalToken), nil
	}

	userID, err := service.Verifier.VerifyRenewal(renewalToken)
	if err != nil {
		service.Metrics.Refresh(metrics.ResultRejected)
		logger.Info("refresh_rejected", "reason", err.Error())
		return model.NoSession(err), nil
	}

	user, err := service.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			service.Metrics.Refresh(metrics.ResultRejected)
			logger.Warn("refresh_rejected", "reason", "unknown_user", "user_id", userID)
			return model.NoSession(model.ErrUserNotFound), nil
		}
		service.Metrics.Refresh(metrics.ResultError)
		logger.Error("user_lookup_failed", "user_id", userID, "err", err)
		return model.RefreshResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !security.BindingMatches(user.RenewalBinding, renewalToken) {
		service.Metrics.Refresh(metrics.ResultRejected)
		logger.Warn("renewal_token_replay", "user_id", user.ID, "has_session", user.HasSession())
		if service.Notifier != nil {
			service.Notifier.RenewalReplay(ctx, user.ID, ClientAddr(ctx))
		}
		return model.NoSession(model.ErrBindingMismatch), nil
	}

	session, err := service.startSession(ctx, user)
	if err != nil {
		service.Metrics.Refresh(metrics.ResultError)
		logger.Error("session_rotate_failed", "user_id", user.ID, "err", err)
		return model.RefreshResult{}, fmt.Errorf("%s: %w", op, err)
	}

	service.Metrics.Refresh(metrics.ResultSuccess)
	logger.Info("session_rotated", "user_id", user.ID)
	return model.RefreshResult{Active: true, Session: *session}, nil
}

// Logout only touches server state when RevokeBindingOnLogout is set. A
// missing, invalid or stale token is not an error.
func (service *AuthenticationService) Logout(ctx context.Context, renewalToken string) error {
	const op = "service.AuthenticationService.Logout"

	logger := log.From(ctx).With("op", op)

	if !service.RevokeBindingOnLogout || renewalToken == "" {
		logger.Debug("logout_client_only")
		return nil
	}

	userID, err := service.Verifier.VerifyRenewal(renewalToken)
	if err != nil {
		logger.Debug("logout_token_ignored", "reason", err.Error())
		return nil
	}

	user, err := service.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		logger.Error("user_lookup_failed", "user_id", userID, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if !security.BindingMatches(user.RenewalBinding, renewalToken) {
		logger.Debug("logout_token_ignored", "reason", "stale_binding", "user_id", user.ID)
		return nil
	}

	if err := service.Users.SetRenewalBinding(ctx, user.ID, ""); err != nil {
		logger.Error("binding_revoke_failed", "user_id", user.ID, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("binding_revoked", "user_id", user.ID)
	return nil
}

// Authorize guards protected resources: it returns the user id bound to a
// valid access token and ErrAccessDenied otherwise.
func (service *AuthenticationService) Authorize(ctx context.Context, accessToken string) (string, error) {
	const op = "service.AuthenticationService.Authorize"

	userID, err := service.Verifier.VerifyAccess(accessToken)
	if err != nil {
		log.From(ctx).Debug("access_denied", "op", op, "reason", err.Error())
		return "", fmt.Errorf("%s: %w: %w", op, model.ErrAccessDenied, err)
	}

	return userID, nil
}

// startSession mints a fresh pair and binds the renewal token to the user.
func (service *AuthenticationService) startSession(ctx context.Context, user *model.User) (*model.Session, error) {
	accessToken, err := service.Issuer.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	renewalToken, err := service.Issuer.IssueRenewalToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue renewal token: %w", err)
	}

	if err := service.Users.SetRenewalBinding(ctx, user.ID, security.BindingDigest(renewalToken.Value)); err != nil {
		return nil, fmt.Errorf("bind renewal token: %w", err)
	}

	return &model.Session{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  accessToken,
		RenewalToken: renewalToken,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email string, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", model.ErrValidation)
	}

	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return fmt.Errorf("%w: email is not a valid address", model.ErrValidation)
	}

	if password == "" {
		return fmt.Errorf("%w: password is required", model.ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password is longer than %d bytes", model.ErrValidation, maxPasswordBytes)
	}

	return nil
}
