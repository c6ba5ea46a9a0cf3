package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "phoneempire/internal/log"
)

// Timeout bounds every request by d through the user context that handlers
// pass down to the repos. A handler that comes back with the deadline error
// is answered with 504.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			applog.Error(c, "request.timeout", err, map[string]any{"limit": d.String()})
			return jsonError(c, fiber.StatusGatewayTimeout, msgTimedOut)
		}
		return err
	}
}
