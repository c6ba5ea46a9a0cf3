package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "phoneempire/internal/log"
	"phoneempire/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Cookies(AdminCookie)
}

// RequireAdmin verifies the signed session on every request and checks that
// its account is still an admin. API routes get a JSON 401; pages are sent to
// the login form.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.Authorize(c.UserContext(), bearerToken(c))
		if err != nil && !errors.Is(err, services.ErrUnauthorized) {
			return err
		}
		if err != nil {
			applog.Security(c, "access.denied.admin", nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return jsonError(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
			}
			return c.Redirect("/admin/login")
		}
		c.Locals("admin_id", claims.UserID())
		return c.Next()
	}
}
