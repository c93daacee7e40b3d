package service

import (
	"AuthTokens_Service/internal/model"
	"AuthTokens_Service/internal/security"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) Create(ctx context.Context, email string, passwordHash string) (*model.User, error) {
	args := m.Called(ctx, email, passwordHash)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) SetRenewalBinding(ctx context.Context, userID string, binding string) error {
	return m.Called(ctx, userID, binding).Error(0)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Compare(hash string, password string) bool {
	return m.Called(hash, password).Bool(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAccessToken(userID string) (model.IssuedToken, error) {
	args := m.Called(userID)
	return args.Get(0).(model.IssuedToken), args.Error(1)
}

func (m *MockTokenIssuer) IssueRenewalToken(userID string) (model.IssuedToken, error) {
	args := m.Called(userID)
	return args.Get(0).(model.IssuedToken), args.Error(1)
}

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyAccess(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *MockTokenVerifier) VerifyRenewal(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RenewalReplay(ctx context.Context, userID string, remoteAddr string) {
	m.Called(ctx, userID, remoteAddr)
}

type mocks struct {
	store    *MockCredentialStore
	hasher   *MockHasher
	issuer   *MockTokenIssuer
	verifier *MockTokenVerifier
	notifier *MockNotifier
}

func newMockedService(t *testing.T) (*AuthenticationService, *mocks) {
	t.Helper()

	m := &mocks{
		store:    new(MockCredentialStore),
		hasher:   new(MockHasher),
		issuer:   new(MockTokenIssuer),
		verifier: new(MockTokenVerifier),
		notifier: new(MockNotifier),
	}
	t.Cleanup(func() {
		m.store.AssertExpectations(t)
		m.hasher.AssertExpectations(t)
		m.issuer.AssertExpectations(t)
		m.verifier.AssertExpectations(t)
		m.notifier.AssertExpectations(t)
	})

	authService := NewAuthenticationService(m.store, m.hasher, m.issuer, m.verifier)
	authService.Notifier = m.notifier

	return authService, m
}

var expiresAt = time.Date(2025, time.March, 10, 12, 15, 0, 0, time.UTC)

func issued(value string) model.IssuedToken {
	return model.IssuedToken{Value: value, ExpiresAt: expiresAt}
}

func TestRefresh_NoToken(t *testing.T) {
	authService, _ := newMockedService(t)

	result, err := authService.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.ErrorIs(t, result.Reason, model.ErrNoRenewalToken)
}

func TestRefresh_VerificationFailures(t *testing.T) {
	for _, kind := range []error{model.ErrTokenMalformed, model.ErrTokenBadSignature, model.ErrTokenExpired} {
		t.Run(kind.Error(), func(t *testing.T) {
			authService, m := newMockedService(t)
			m.verifier.On("VerifyRenewal", "renewal-token").Return("", fmt.Errorf("verify: %w", kind))

			result, err := authService.Refresh(context.Background(), "renewal-token")
			require.NoError(t, err)
			assert.False(t, result.Active)
			assert.Empty(t, result.Session.AccessToken.Value)
			assert.ErrorIs(t, result.Reason, kind)
		})
	}
}

func TestRefresh_UserNotFound(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "renewal-token").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").Return(nil, fmt.Errorf("store: %w", model.ErrUserNotFound))

	result, err := authService.Refresh(ctx, "renewal-token")
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.ErrorIs(t, result.Reason, model.ErrUserNotFound)
}

func TestRefresh_StoreFailure(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "renewal-token").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").Return(nil, fmt.Errorf("connection refused"))

	_, err := authService.Refresh(ctx, "renewal-token")
	assert.Error(t, err)
}

func TestRefresh_BindingMismatchNotifies(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := WithClientAddr(context.Background(), "10.0.0.7")

	m.verifier.On("VerifyRenewal", "rotated-out").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").
		Return(&model.User{ID: "user-1", RenewalBinding: security.BindingDigest("current")}, nil)
	m.notifier.On("RenewalReplay", ctx, "user-1", "10.0.0.7").Once()

	result, err := authService.Refresh(ctx, "rotated-out")
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.ErrorIs(t, result.Reason, model.ErrBindingMismatch)
}

func TestRefresh_EmptyBindingIsMismatch(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "renewal-token").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").Return(&model.User{ID: "user-1"}, nil)
	m.notifier.On("RenewalReplay", ctx, "user-1", "").Once()

	result, err := authService.Refresh(ctx, "renewal-token")
	require.NoError(t, err)
	assert.ErrorIs(t, result.Reason, model.ErrBindingMismatch)
}

func TestRefresh_BindingWriteFails(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "current").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").
		Return(&model.User{ID: "user-1", RenewalBinding: security.BindingDigest("current")}, nil)
	m.issuer.On("IssueAccessToken", "user-1").Return(issued("new-access"), nil)
	m.issuer.On("IssueRenewalToken", "user-1").Return(issued("new-renewal"), nil)
	m.store.On("SetRenewalBinding", ctx, "user-1", security.BindingDigest("new-renewal")).
		Return(fmt.Errorf("database error"))

	_, err := authService.Refresh(ctx, "current")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind renewal token")
}

func TestRefresh_SigningFails(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "current").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").
		Return(&model.User{ID: "user-1", RenewalBinding: security.BindingDigest("current")}, nil)
	m.issuer.On("IssueAccessToken", "user-1").Return(model.IssuedToken{}, fmt.Errorf("jwt generation error"))

	_, err := authService.Refresh(ctx, "current")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue access token")
}

func TestRefresh_Success(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "current").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").
		Return(&model.User{ID: "user-1", Email: "a@x.com", RenewalBinding: security.BindingDigest("current")}, nil)
	m.issuer.On("IssueAccessToken", "user-1").Return(issued("new-access"), nil)
	m.issuer.On("IssueRenewalToken", "user-1").Return(issued("new-renewal"), nil)
	m.store.On("SetRenewalBinding", ctx, "user-1", security.BindingDigest("new-renewal")).Return(nil)

	result, err := authService.Refresh(ctx, "current")
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.NoError(t, result.Reason)
	assert.Equal(t, "new-access", result.Session.AccessToken.Value)
	assert.Equal(t, "new-renewal", result.Session.RenewalToken.Value)
	assert.Equal(t, "a@x.com", result.Session.Email)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.store.On("FindByEmail", ctx, "nobody@x.com").Return(nil, fmt.Errorf("store: %w", model.ErrUserNotFound))
	m.store.On("FindByEmail", ctx, "a@x.com").Return(&model.User{ID: "user-1", Email: "a@x.com", PasswordHash: "hash"}, nil)
	m.hasher.On("Compare", "hash", "wrong").Return(false)

	_, unknownErr := authService.Login(ctx, "nobody@x.com", "pw1")
	_, wrongErr := authService.Login(ctx, "a@x.com", "wrong")

	assert.ErrorIs(t, unknownErr, model.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, model.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	m.store.AssertNotCalled(t, "SetRenewalBinding", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	authService, _ := newMockedService(t)

	_, err := authService.Login(context.Background(), "", "pw1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.store.On("FindByEmail", ctx, "a@x.com").Return(&model.User{ID: "user-1", Email: "a@x.com", PasswordHash: "hash"}, nil)
	m.hasher.On("Compare", "hash", "pw1").Return(true)
	m.issuer.On("IssueAccessToken", "user-1").Return(issued("access"), nil)
	m.issuer.On("IssueRenewalToken", "user-1").Return(issued("renewal"), nil)
	m.store.On("SetRenewalBinding", ctx, "user-1", security.BindingDigest("renewal")).Return(nil)

	session, err := authService.Login(ctx, " A@X.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "a@x.com", session.Email)
	assert.Equal(t, "access", session.AccessToken.Value)
	assert.Equal(t, "renewal", session.RenewalToken.Value)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "pw1"},
		{name: "not an address", email: "alice", password: "pw1"},
		{name: "display name", email: "Alice <a@x.com>", password: "pw1"},
		{name: "empty password", email: "a@x.com", password: ""},
		{name: "password too long", email: "a@x.com", password: string(make([]byte, maxPasswordBytes+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService, _ := newMockedService(t)

			_, err := authService.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.hasher.On("Hash", "pw1").Return("hash", nil)
	m.store.On("Create", ctx, "a@x.com", "hash").Return(nil, fmt.Errorf("store: %w", model.ErrAlreadyExists))

	_, err := authService.Register(ctx, "a@x.com", "pw1")
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
}

func TestRegister_Success(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.hasher.On("Hash", "pw1").Return("hash", nil)
	m.store.On("Create", ctx, "a@x.com", "hash").Return(&model.User{ID: "user-1", Email: "a@x.com"}, nil)

	user, err := authService.Register(ctx, "A@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestAuthorize(t *testing.T) {
	authService, m := newMockedService(t)
	ctx := context.Background()

	m.verifier.On("VerifyAccess", "good").Return("user-1", nil)
	m.verifier.On("VerifyAccess", "forged").Return("", fmt.Errorf("verify: %w", model.ErrTokenBadSignature))

	userID, err := authService.Authorize(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = authService.Authorize(ctx, "forged")
	assert.ErrorIs(t, err, model.ErrAccessDenied)
	assert.ErrorIs(t, err, model.ErrTokenBadSignature)
}

func TestLogout_DefaultLeavesBinding(t *testing.T) {
	authService, _ := newMockedService(t)

	assert.NoError(t, authService.Logout(context.Background(), "renewal-token"))
}

func TestLogout_RevokeCurrentBinding(t *testing.T) {
	authService, m := newMockedService(t)
	authService.RevokeBindingOnLogout = true
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "current").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").
		Return(&model.User{ID: "user-1", RenewalBinding: security.BindingDigest("current")}, nil)
	m.store.On("SetRenewalBinding", ctx, "user-1", "").Return(nil)

	assert.NoError(t, authService.Logout(ctx, "current"))
}

func TestLogout_RevokeIgnoresBadAndStaleTokens(t *testing.T) {
	authService, m := newMockedService(t)
	authService.RevokeBindingOnLogout = true
	ctx := context.Background()

	m.verifier.On("VerifyRenewal", "garbage").Return("", fmt.Errorf("verify: %w", model.ErrTokenMalformed))
	m.verifier.On("VerifyRenewal", "stale").Return("user-1", nil)
	m.store.On("FindByID", ctx, "user-1").
		Return(&model.User{ID: "user-1", RenewalBinding: security.BindingDigest("current")}, nil)

	assert.NoError(t, authService.Logout(ctx, ""))
	assert.NoError(t, authService.Logout(ctx, "garbage"))
	assert.NoError(t, authService.Logout(ctx, "stale"))
	m.store.AssertNotCalled(t, "SetRenewalBinding", mock.Anything, mock.Anything, mock.Anything)
}
