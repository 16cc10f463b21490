package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/helpdesk-service/internal/api/http/handlers"
	"github.com/deskline/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.Me)

	// Authentication is attached per resource group so unknown /api paths
	// still answer 404.
	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}

	tickets := api.Group("/tickets", authenticated...)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Patch("/:id/assign", cfg.Tickets.AssignTicket)

	dashboard := api.Group("/dashboard", authenticated...)
	dashboard.Get("/metrics", cfg.Dashboard.Metrics)
	dashboard.Get("/timeline", cfg.Dashboard.Timeline)
	dashboard.Get("/categories", cfg.Dashboard.Categories)
	dashboard.Get("/agents", auth.RequireStaff(), cfg.Dashboard.Agents)

	users := api.Group("/users", authenticated...)
	users.Patch("/me", cfg.Users.UpdateSelf)
	admin := users.Group("", auth.RequireAdmin())
	admin.Get("/", cfg.Users.List)
	admin.Get("/agents", cfg.Users.ListAgents)
	admin.Post("/create", cfg.Users.Create)
	admin.Get("/:id", cfg.Users.Get)
	admin.Delete("/:id", cfg.Users.Delete)

	notifications := api.Group("/notifications", authenticated...)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Delete("/", cfg.Notifications.Clear)
}
