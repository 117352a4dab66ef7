package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bugtracker/internal/api/http/handlers"
	"github.com/spec-kit/bugtracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Meta           *handlers.MetaHandler
	Ops            *handlers.OpsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Replace)
	tickets.Patch("/:id", cfg.Tickets.Patch)
	tickets.Delete("/:id", cfg.Tickets.Delete)

	tickets.Get("/:id/comments", cfg.Comments.ListByTicket)
	tickets.Post("/:id/comments", cfg.Comments.Create)
	protected.Delete("/comments/:id", cfg.Comments.Delete)

	protected.Get("/statuses", cfg.Meta.Statuses)
	protected.Get("/priorities", cfg.Meta.Priorities)
	protected.Get("/users", cfg.Meta.Users)
	protected.Get("/stats", cfg.Meta.Stats)

	ops := protected.Group("/ops")
	ops.Post("/sweep", cfg.Ops.Sweep)
	ops.Get("/sweep/preview", cfg.Ops.SweepPreview)
}
