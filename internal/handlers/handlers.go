// Package handlers holds the HTML and probe endpoints.
package handlers

import (
	"github.com/gofiber/fiber/v3"

	"realflow/internal/models"
)

// currentUser returns the dashboard user stored by the auth middleware, or nil.
func currentUser(c fiber.Ctx) *models.DashboardUser {
	user, _ := c.Locals("user").(*models.DashboardUser)
	return user
}
