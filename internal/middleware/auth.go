package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"realflow/internal/models"
)

// Session keys written by the OIDC callback.
const (
	SessionUserSub       = "user_sub"
	SessionUserEmail     = "user_email"
	SessionUserName      = "user_name"
	SessionRedirectAfter = "redirect_after_login"
)

// AuthMiddleware gates the dashboard behind an OIDC session.
type AuthMiddleware struct {
	enabled bool
}

// NewAuthMiddleware creates a new auth middleware instance. When enabled is
// false every request passes through.
func NewAuthMiddleware(enabled bool) *AuthMiddleware {
	return &AuthMiddleware{enabled: enabled}
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if !m.enabled {
		return c.Next()
	}

	sess := session.FromContext(c)
	if sess == nil {
		return c.Redirect().To("/login")
	}

	sub, _ := sess.Get(SessionUserSub).(string)
	if sub == "" {
		sess.Set(SessionRedirectAfter, c.OriginalURL())
		return c.Redirect().To("/login")
	}

	email, _ := sess.Get(SessionUserEmail).(string)
	name, _ := sess.Get(SessionUserName).(string)
	c.Locals("user", &models.DashboardUser{Sub: sub, Email: email, Name: name})
	return c.Next()
}
