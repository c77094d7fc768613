package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/complaint-service/internal/config"
)

// Verifier turns a raw token into claims. Invalid or expired input yields
// (nil, false); it is an expected outcome, not an error.
type Verifier interface {
	Verify(token string) (*Claims, bool)
}

// FullVerifier checks the HS256 signature and the expiry claim. Without a
// secret it rejects every token.
type FullVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewFullVerifier builds a verifier for the given secret.
func NewFullVerifier(secret string) *FullVerifier {
	return &FullVerifier{secret: []byte(secret), now: time.Now}
}

// Verify implements Verifier.
func (v *FullVerifier) Verify(tokenStr string) (*Claims, bool) {
	if len(v.secret) == 0 || tokenStr == "" {
		return nil, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !parsed.Valid || !claims.wellFormed() {
		return nil, false
	}
	return claims, true
}

// StructuralVerifier decodes the token and checks only its shape and expiry.
//
// Trust boundary: the signature is NOT checked. A forged token with a future
// expiry passes. It exists for execution contexts that cannot hold the signing
// secret, and it is only ever wired to the edge redirector, whose decisions are
// advisory. API routes always go through Guard, which uses FullVerifier.
type StructuralVerifier struct {
	now func() time.Time
}

// NewStructuralVerifier builds a structural-only verifier.
func NewStructuralVerifier() *StructuralVerifier {
	return &StructuralVerifier{now: time.Now}
}

// Verify implements Verifier.
func (v *StructuralVerifier) Verify(tokenStr string) (*Claims, bool) {
	if tokenStr == "" {
		return nil, false
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, false
	}
	if claims.ExpiresAt == nil || !v.now().Before(claims.ExpiresAt.Time) {
		return nil, false
	}
	if !claims.wellFormed() {
		return nil, false
	}
	return claims, true
}

// NewEdgeVerifier selects the verifier used by the edge redirector.
func NewEdgeVerifier(mode string, tokens *TokenManager) (Verifier, error) {
	switch mode {
	case "", config.VerificationFull:
		return tokens.FullVerifier(), nil
	case config.VerificationStructural:
		return &StructuralVerifier{now: tokens.now}, nil
	default:
		return nil, fmt.Errorf("auth: unknown verification mode %q", mode)
	}
}
