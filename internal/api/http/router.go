package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Users      *handlers.UsersHandler
	Complaints *handlers.ComplaintsHandler
	Pages      *handlers.PagesHandler
	Guard      *auth.Guard
	Redirector *auth.EdgeRedirector
	RateLimit  fiber.Handler
	Metrics    fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	limit := cfg.RateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", limit, cfg.Users.Register)
	authGroup.Post("/login", limit, cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/me", cfg.Guard.Authenticated(), cfg.Users.Me)

	complaints := api.Group("/complaints")
	complaints.Get("", cfg.Guard.Admin(), cfg.Complaints.List)
	complaints.Post("", cfg.Guard.Authenticated(), cfg.Complaints.Create)
	complaints.Patch("/:id", cfg.Guard.Admin(), cfg.Complaints.UpdateStatus)
	complaints.Delete("/:id", cfg.Guard.Admin(), cfg.Complaints.Delete)

	// Page routes only; the redirector never sees /api.
	edge := cfg.Redirector.Handle
	app.Get("/", edge, cfg.Pages.Home)
	app.Get("/admin", edge, cfg.Pages.Admin)
	app.Get("/admin/*", edge, cfg.Pages.Admin)
	app.Get("/login", edge, cfg.Pages.Login)
	app.Get("/register", edge, cfg.Pages.Register)
}
