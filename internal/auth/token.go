package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// TokenTTL is the fixed validity window of an issued credential.
const TokenTTL = 7 * 24 * time.Hour

// ErrSecretNotConfigured is returned when issuing without a signing secret.
var ErrSecretNotConfigured = errors.New("auth: signing secret not configured")

// Payload is the identity embedded in a credential.
type Payload struct {
	UserID string
	Email  string
	Role   domain.Role
}

// Claims describes JWT payload.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the credential carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role.IsAdmin()
}

func (c *Claims) wellFormed() bool {
	return c.UserID != "" && c.Role.Valid()
}

// TokenManager handles issuing JWT tokens. The secret is process-wide and
// injected at startup.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Configured reports whether a signing secret is present.
func (tm *TokenManager) Configured() bool {
	return len(tm.secret) > 0
}

// Issue builds and signs a credential for the payload.
func (tm *TokenManager) Issue(p Payload) (string, time.Time, error) {
	if !tm.Configured() {
		return "", time.Time{}, ErrSecretNotConfigured
	}
	if p.UserID == "" || !p.Role.Valid() {
		return "", time.Time{}, errors.New("auth: payload requires user id and a valid role")
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(TokenTTL)
	claims := &Claims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// FullVerifier returns the signature-checking verifier sharing this manager's secret.
func (tm *TokenManager) FullVerifier() *FullVerifier {
	return &FullVerifier{secret: tm.secret, now: tm.now}
}
