package handlers

import (
	"github.com/gofiber/fiber/v2"

	"phoneempire/internal/domain"
	applog "phoneempire/internal/log"
	"phoneempire/internal/services"
	"phoneempire/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
}

// GET /api/orders?status=all|pending|completed
func (h *OrderHandler) List(c *fiber.Ctx) error {
	ords, err := h.Order.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, "orders.list", err)
	}
	return c.JSON(ords)
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	o, err := h.Order.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "orders.get", err)
	}
	return c.JSON(o)
}

// POST /api/orders is the storefront checkout. The stored total is the one
// recomputed from the items.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.NewOrder
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	o, err := h.Order.Place(c.UserContext(), in)
	if err != nil {
		return fail(c, "order.place", err)
	}
	fields := map[string]any{"order_id": o.ID, "total": o.Total, "items": len(o.Items)}
	if in.Total != nil {
		fields["client_total"] = *in.Total
	}
	applog.Audit(c, "order.place", fields)
	return c.Status(fiber.StatusCreated).JSON(o)
}

type statusUpdate struct {
	Status domain.OrderStatus `json:"status"`
}

// PUT /api/orders/:id accepts only {status}.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	var in statusUpdate
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	o, err := h.Order.UpdateStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return fail(c, "orders.update", err)
	}
	applog.Audit(c, "orders.update", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}
