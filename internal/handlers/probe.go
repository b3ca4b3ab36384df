package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = "Realflow AI Agent Backend"

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles liveness and Kubernetes health probe endpoints.
type ProbeHandler struct {
	db      Pinger
	sinks   []string
	version string
	now     func() time.Time
}

// NewProbeHandler creates a new probe handler. database may be nil when no
// relational sink is configured.
func NewProbeHandler(database Pinger, sinks []string, version string) *ProbeHandler {
	return &ProbeHandler{db: database, sinks: sinks, version: version, now: time.Now}
}

// Root handles GET /, reporting which sinks are connected.
func (h *ProbeHandler) Root(c fiber.Ctx) error {
	sinks := make(map[string]bool, len(h.sinks))
	for _, name := range h.sinks {
		sinks[name] = true
	}

	return c.JSON(fiber.Map{
		"status":             "healthy",
		"service":            ServiceName,
		"version":            h.version,
		"timestamp":          h.now().UTC().Format(time.RFC3339),
		"sinks":              sinks,
		"database_connected": h.db != nil && h.db.Ping(c.Context()) == nil,
	})
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the application can serve traffic (database is reachable
// when one is configured).
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "database unavailable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
