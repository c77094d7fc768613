package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// CookieName carries the credential between browser and service.
const CookieName = "auth_token"

const claimsKey = "auth_claims"

// Guard is the per-operation security boundary. It always verifies the
// signature; the edge redirector in front of page routes does not replace it.
type Guard struct {
	verifier *FullVerifier
}

// NewGuard constructs the guard around a signature-checking verifier.
func NewGuard(verifier *FullVerifier) *Guard {
	return &Guard{verifier: verifier}
}

// RequireAuthenticated returns the caller's claims or an Unauthorized error.
func (g *Guard) RequireAuthenticated(c *fiber.Ctx) (*Claims, error) {
	token := c.Cookies(CookieName)
	if token == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	claims, ok := g.verifier.Verify(token)
	if !ok {
		return nil, apperrors.NewUnauthorized("invalid or expired credential")
	}
	return claims, nil
}

// RequireAdmin returns admin claims, Unauthorized without a credential, or
// Forbidden for a valid non-admin credential.
func (g *Guard) RequireAdmin(c *fiber.Ctx) (*Claims, error) {
	claims, err := g.RequireAuthenticated(c)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, apperrors.NewForbidden("admin access required")
	}
	return claims, nil
}

// ClaimsFromContext retrieves the claims stored by Authenticated or Admin.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
