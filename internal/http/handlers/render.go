package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "phoneempire/internal/log"
	"phoneempire/internal/services"
)

const (
	msgGeneric  = "Something went wrong. Please try again."
	msgTimedOut = "request timed out"
	msgNotFound = "not found"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if uid, ok := c.Locals("admin_id").(int64); ok {
		data["AdminID"] = uid
	}
	if tok, ok := c.Locals("csrf").(string); ok && tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// fail maps a service error onto a JSON response. Unexpected errors are
// logged and reported with a generic message only.
func fail(c *fiber.Ctx, action string, err error) error {
	if ve, ok := services.AsValidation(err); ok {
		applog.Security(c, "validation.fail", map[string]any{"action": action, "fields": ve.Fields})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed", "fields": ve.Fields})
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, msgNotFound)
	case errors.Is(err, services.ErrInvalidTransition):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, services.ErrUnauthorized):
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		applog.Error(c, action+".timeout", err, nil)
		return jsonError(c, fiber.StatusGatewayTimeout, msgTimedOut)
	}
	applog.Error(c, action+".fail", err, nil)
	return jsonError(c, fiber.StatusInternalServerError, msgGeneric)
}

func badBody(c *fiber.Ctx, err error) error {
	applog.Security(c, "validation.fail", map[string]any{"field": "body", "reason": err.Error()})
	return jsonError(c, fiber.StatusBadRequest, "request body must be a JSON object")
}

func badID(c *fiber.Ctx) error {
	applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": c.Params("id")})
	return jsonError(c, fiber.StatusNotFound, msgNotFound)
}
