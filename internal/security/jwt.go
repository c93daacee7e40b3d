package security

import (
	"AuthTokens_Service/internal/clock"
	"AuthTokens_Service/internal/model"
	"bytes"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

// Claims is the claim shape shared by access and renewal tokens. The two
// token types differ only in the secret that signs them and in their TTL.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenConfig carries the two signing secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  []byte
	RenewalSecret []byte
	AccessTTL     time.Duration
	RenewalTTL    time.Duration
	Issuer        string
}

func (c TokenConfig) validate() error {
	if len(c.AccessSecret) == 0 || len(c.RenewalSecret) == 0 {
		return errors.New("signing secrets must not be empty")
	}
	if bytes.Equal(c.AccessSecret, c.RenewalSecret) {
		return errors.New("access and renewal secrets must differ")
	}
	if c.AccessTTL <= 0 || c.RenewalTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}

	return nil
}

var signingMethod = jwt.SigningMethodHS512

// TokenIssuer mints HS512 tokens.
type TokenIssuer struct {
	config TokenConfig
	clock  clock.Clock
}

func NewTokenIssuer(config TokenConfig, clk clock.Clock) (*TokenIssuer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("security.NewTokenIssuer: %w", err)
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &TokenIssuer{config: config, clock: clk}, nil
}

// IssueAccessToken signs {user_id, iat, exp=now+AccessTTL} with the access secret.
func (issuer *TokenIssuer) IssueAccessToken(userID string) (model.IssuedToken, error) {
	return issuer.sign(userID, issuer.config.AccessSecret, issuer.config.AccessTTL)
}

// IssueRenewalToken signs {user_id, iat, exp=now+RenewalTTL} with the renewal secret.
func (issuer *TokenIssuer) IssueRenewalToken(userID string) (model.IssuedToken, error) {
	return issuer.sign(userID, issuer.config.RenewalSecret, issuer.config.RenewalTTL)
}

func (issuer *TokenIssuer) sign(userID string, secret []byte, ttl time.Duration) (model.IssuedToken, error) {
	const op = "security.TokenIssuer.sign"

	if userID == "" {
		return model.IssuedToken{}, fmt.Errorf("%s: empty user id", op)
	}

	now := issuer.clock.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("%s: %w", op, err)
	}

	return model.IssuedToken{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// TokenVerifier validates tokens minted by TokenIssuer.
type TokenVerifier struct {
	config TokenConfig
	clock  clock.Clock
}

func NewTokenVerifier(config TokenConfig, clk clock.Clock) (*TokenVerifier, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("security.NewTokenVerifier: %w", err)
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &TokenVerifier{config: config, clock: clk}, nil
}

// VerifyAccess verifies token against the access secret.
func (verifier *TokenVerifier) VerifyAccess(token string) (string, error) {
	return verifier.Verify(token, verifier.config.AccessSecret)
}

// VerifyRenewal verifies token against the renewal secret.
func (verifier *TokenVerifier) VerifyRenewal(token string) (string, error) {
	return verifier.Verify(token, verifier.config.RenewalSecret)
}

// Verify checks the signature of token under secret, then its expiry, and
// returns the bound user id. Failures wrap exactly one of
// model.ErrTokenMalformed, model.ErrTokenBadSignature, model.ErrTokenExpired.
func (verifier *TokenVerifier) Verify(token string, secret []byte) (string, error) {
	const op = "security.TokenVerifier.Verify"

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(verifier.clock.Now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, classify(token, err))
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%s: %w", op, model.ErrTokenMalformed)
	}

	return claims.UserID, nil
}

// classify maps jwt parser errors onto the three verification kinds.
// The parser reports an undecodable signature segment as malformed; when the
// header and claims still decode, the token is readable and only its
// signature is wrong, so it is reported as a bad signature.
func classify(token string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return model.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return model.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// unknown or missing alg
		return model.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		if _, _, uerr := jwt.NewParser(jwt.WithStrictDecoding()).ParseUnverified(token, &Claims{}); uerr == nil {
			return model.ErrTokenBadSignature
		}
		return model.ErrTokenMalformed
	default:
		return model.ErrTokenMalformed
	}
}
