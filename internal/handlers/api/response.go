// Package api holds the JSON endpoints: the vendor webhook and the read
// endpoints over recorded calls.
package api

import (
	"github.com/gofiber/fiber/v3"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
