package server

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"realflow/internal/handlers"
	"realflow/internal/handlers/api"
	"realflow/internal/middleware"
)

// Routes collects the handlers mounted by RegisterRoutes.
type Routes struct {
	Probe     *handlers.ProbeHandler
	Webhook   *api.WebhookHandler
	Analytics *api.AnalyticsHandler
	Dashboard *handlers.DashboardHandler
	Metrics   http.Handler
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, r Routes) error {
	// Probe routes
	s.App.Get("/", r.Probe.Root)
	s.App.Get("/healthz", r.Probe.Liveness)
	s.App.Get("/readyz", r.Probe.Readiness)
	if r.Metrics != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(r.Metrics))
	}

	// Voice platform webhooks
	s.App.Post("/webhook/:vendor", r.Webhook.Receive)

	// Read API
	s.App.Get("/analytics", r.Analytics.Summary)
	s.App.Get("/hot-leads", r.Analytics.HotLeads)
	s.App.Get("/calls", r.Analytics.Calls)
	s.App.Get("/calls/:call_id", r.Analytics.Call)

	// Dashboard; the session gate only applies when OIDC is configured
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg.IsOIDCEnabled())
	if s.Cfg.IsOIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, s.Logger)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		s.Logger.Warn("OIDC authentication is disabled, the dashboard is open. Set OIDC_ISSUER to enable.")
	}

	s.App.Get("/login", handlers.LoginPage(s.Cfg))
	s.App.Get("/dashboard", authMiddleware.RequireAuth, r.Dashboard.Show)

	return nil
}
