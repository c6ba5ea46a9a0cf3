package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "phoneempire/internal/log"
	"phoneempire/internal/services"
	"phoneempire/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext())
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(ps)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "products.get", err)
	}
	return c.JSON(p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	p, err := h.Catalog.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "price": p.Price, "discount": p.Discount})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id replaces every field.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	p, err := h.Catalog.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": p.ID, "price": p.Price, "discount": p.Discount})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return fail(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
