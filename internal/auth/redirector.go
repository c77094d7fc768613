package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RedirectorConfig lists the page paths the edge redirector reasons about.
type RedirectorConfig struct {
	PublicPaths []string
	AdminPrefix string
	LoginPath   string
	HomePath    string
	AdminHome   string
}

// DefaultRedirectorConfig matches the page routes served by the app.
func DefaultRedirectorConfig() RedirectorConfig {
	return RedirectorConfig{
		PublicPaths: []string{"/login", "/register"},
		AdminPrefix: "/admin",
		LoginPath:   "/login",
		HomePath:    "/",
		AdminHome:   "/admin",
	}
}

// EdgeRedirector performs coarse navigation checks on page routes. Its
// decisions are UX only; API routes are enforced by Guard.
type EdgeRedirector struct {
	verifier Verifier
	cfg      RedirectorConfig
	logger   *zap.Logger
}

// NewEdgeRedirector builds a redirector. verifier may be structural.
func NewEdgeRedirector(verifier Verifier, cfg RedirectorConfig, logger *zap.Logger) *EdgeRedirector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EdgeRedirector{verifier: verifier, cfg: cfg, logger: logger}
}

// Decide returns the redirect target for a navigation to path, or "" to let
// the request through. token is the raw cookie value, possibly empty.
func (r *EdgeRedirector) Decide(path, token string) string {
	var (
		claims *Claims
		valid  bool
	)
	if token != "" {
		claims, valid = r.verifier.Verify(token)
	}

	if r.isPublic(path) {
		if !valid {
			return ""
		}
		if claims.IsAdmin() {
			return r.cfg.AdminHome
		}
		return r.cfg.HomePath
	}

	if token == "" {
		return r.cfg.LoginPath
	}

	if hasPathPrefix(path, r.cfg.AdminPrefix) {
		if !valid || !claims.IsAdmin() {
			return r.cfg.HomePath
		}
		return ""
	}

	// A cookie that does not verify counts as no credential.
	if !valid {
		return r.cfg.LoginPath
	}
	return ""
}

// Handle is the fiber middleware form of Decide.
func (r *EdgeRedirector) Handle(c *fiber.Ctx) error {
	path := c.Path()
	target := r.Decide(path, c.Cookies(CookieName))
	if target == "" || target == path {
		return c.Next()
	}
	r.logger.Debug("edge redirect", zap.String("path", path), zap.String("target", target))
	return c.Redirect(target, fiber.StatusTemporaryRedirect)
}

func (r *EdgeRedirector) isPublic(path string) bool {
	for _, p := range r.cfg.PublicPaths {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/")
}
