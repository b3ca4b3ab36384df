package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"realflow/internal/analytics"
	"realflow/internal/db"
)

// AnalyticsHandler serves metrics and listings from the relational sink.
type AnalyticsHandler struct {
	svc    *analytics.Service
	logger *slog.Logger
}

// NewAnalyticsHandler creates an analytics handler. svc is nil when no
// database is configured; every endpoint then answers 503.
func NewAnalyticsHandler(svc *analytics.Service, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{svc: svc, logger: logger}
}

func (h *AnalyticsHandler) unavailable(c fiber.Ctx) error {
	return jsonError(c, fiber.StatusServiceUnavailable, "analytics require the database sink")
}

// Summary handles GET /analytics.
func (h *AnalyticsHandler) Summary(c fiber.Ctx) error {
	if h.svc == nil {
		return h.unavailable(c)
	}

	resp, err := h.svc.Summary(c.Context())
	if err != nil {
		h.logger.Error("failed to compute analytics", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute analytics")
	}
	return c.JSON(resp)
}

// HotLeads handles GET /hot-leads.
func (h *AnalyticsHandler) HotLeads(c fiber.Ctx) error {
	if h.svc == nil {
		return h.unavailable(c)
	}

	resp, err := h.svc.HotLeads(c.Context())
	if err != nil {
		h.logger.Error("failed to list hot leads", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch hot leads")
	}
	return c.JSON(resp)
}

// Calls handles GET /calls?limit=&offset=.
func (h *AnalyticsHandler) Calls(c fiber.Ctx) error {
	if h.svc == nil {
		return h.unavailable(c)
	}

	limit := fiber.Query[int](c, "limit", analytics.DefaultLimit)
	offset := fiber.Query[int](c, "offset", 0)

	resp, err := h.svc.Calls(c.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list calls", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch calls")
	}
	return c.JSON(resp)
}

// Call handles GET /calls/:call_id.
func (h *AnalyticsHandler) Call(c fiber.Ctx) error {
	if h.svc == nil {
		return h.unavailable(c)
	}

	call, err := h.svc.Call(c.Context(), c.Params("call_id"))
	if errors.Is(err, db.ErrCallNotFound) {
		return jsonError(c, fiber.StatusNotFound, "call not found")
	}
	if err != nil {
		h.logger.Error("failed to fetch call", "call_id", c.Params("call_id"), "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch call")
	}
	return c.JSON(call)
}
