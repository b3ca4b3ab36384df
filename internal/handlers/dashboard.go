package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"realflow/internal/analytics"
	"realflow/internal/config"
	"realflow/internal/models"
	"realflow/internal/scoring"
)

// DashboardHandler renders the lead dashboard.
type DashboardHandler struct {
	svc    *analytics.Service
	cfg    *config.Config
	logger *slog.Logger
}

// NewDashboardHandler creates a dashboard handler. svc is nil when no
// database is configured.
func NewDashboardHandler(svc *analytics.Service, cfg *config.Config, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{svc: svc, cfg: cfg, logger: logger}
}

// Show handles GET /dashboard.
func (h *DashboardHandler) Show(c fiber.Ctx) error {
	data := fiber.Map{
		"HotScore":    scoring.HotScoreThreshold,
		"Unavailable": h.svc == nil,
	}

	if h.svc != nil {
		summary, err := h.svc.Summary(c.Context())
		if err != nil {
			h.logger.Error("failed to load dashboard analytics", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load analytics")
		}
		hot, err := h.svc.HotLeads(c.Context())
		if err != nil {
			h.logger.Error("failed to load dashboard hot leads", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load hot leads")
		}

		data["Metrics"] = summary.Metrics
		data["ConversionPercent"] = summary.ConversionRate * 100
		data["RecentCalls"] = summary.RecentCalls
		data["HotLeads"] = hot.HotLeads
		data["UrgencyRows"] = breakdownRows(summary.ByUrgency, []string{
			models.UrgencyImmediate, models.UrgencyOneToThree, models.UrgencyThreeToSix, models.UrgencySixPlus, models.UrgencyBrowsing,
		})
		data["RoleRows"] = breakdownRows(summary.ByRole, []string{
			models.RoleBuyer, models.RoleInvestor, models.RoleDeveloper, models.RoleSeller, models.RoleBroker,
			models.RoleLender, models.RoleOwner, models.RoleOther, models.RoleGeneralInquiry,
		})
	}

	return RenderPage(c, h.cfg, fiber.StatusOK, "dashboard", "Dashboard", data)
}

// BreakdownRow is one labelled count on the dashboard.
type BreakdownRow struct {
	Label string
	Count int
}

// breakdownRows lists counts in the given order, skipping zeros.
func breakdownRows(counts map[string]int, order []string) []BreakdownRow {
	var rows []BreakdownRow
	for _, label := range order {
		if n := counts[label]; n > 0 {
			rows = append(rows, BreakdownRow{Label: label, Count: n})
		}
	}
	return rows
}
