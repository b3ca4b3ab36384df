package handlers

import (
	"maps"

	"github.com/gofiber/fiber/v3"

	"realflow/internal/config"
)

// layoutKeys are the fields views/layouts/main.html reads on every page.
func layoutKeys(cfg *config.Config) fiber.Map {
	return fiber.Map{
		"SiteTitle":   cfg.SiteTitle,
		"SiteTagline": cfg.SiteTagline,
		"SiteFooter":  cfg.SiteFooter,
		"SiteLogoURL": cfg.SiteLogoURL,
		"Version":     cfg.ServiceVersion,
	}
}

// RenderPage renders view inside the main layout with the given status.
// Page-specific data wins over layout keys of the same name.
func RenderPage(c fiber.Ctx, cfg *config.Config, status int, view, title string, data fiber.Map) error {
	page := layoutKeys(cfg)
	page["Title"] = title
	page["User"] = currentUser(c)
	maps.Copy(page, data)
	return c.Status(status).Render(view, page)
}
