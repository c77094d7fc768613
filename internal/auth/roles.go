package auth

import (
	"github.com/gofiber/fiber/v2"
)

// Authenticated rejects requests without a valid credential and stores the
// claims for handlers.
func (g *Guard) Authenticated() fiber.Handler {
	return g.gate(g.RequireAuthenticated)
}

// Admin rejects requests that do not carry a valid admin credential.
func (g *Guard) Admin() fiber.Handler {
	return g.gate(g.RequireAdmin)
}

func (g *Guard) gate(check func(*fiber.Ctx) (*Claims, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := check(c)
		if err != nil {
			return err
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}
