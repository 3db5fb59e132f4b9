package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/call-triage-service/internal/api/http/handlers"
	"github.com/spec-kit/call-triage-service/internal/auth"
	"github.com/spec-kit/call-triage-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Webhook        *handlers.WebhookHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/webhooks/call-events", cfg.Webhook.HandleEvent)
	app.Get("/webhooks/call-events", cfg.Webhook.Status)

	app.Post("/auth/operators/login", cfg.Audit.Login)

	audit := app.Group("/audit", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	// the unfiltered listing spans every tenant, so it is admin only
	audit.Get("/events", auth.RequireRole(domain.RoleAdmin), cfg.Audit.ListEvents)
	audit.Get("/events/:callId", cfg.Audit.GetCallEvents)
	audit.Get("/alerts/:triageId", cfg.Audit.GetTriageAlerts)
}
