package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/gofiber/fiber/v2"

	"phoneempire/internal/domain"
	applog "phoneempire/internal/log"
	"phoneempire/internal/pricing"
	"phoneempire/internal/services"
	"phoneempire/internal/validate"
)

type AdminHandler struct {
	Order   *services.OrderService
	Catalog *services.CatalogService
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Order.Stats(c.UserContext())
	if err != nil {
		return fail(c, "admin.stats", err)
	}
	return c.JSON(st)
}

type orderRow struct {
	ID        int64  `csv:"id"`
	CreatedAt string `csv:"created_at"`
	Status    string `csv:"status"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Phone     string `csv:"phone"`
	Address   string `csv:"address"`
	Items     string `csv:"items"`
	Total     int64  `csv:"total"`
}

func summarizeItems(items domain.OrderItems) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d @ %d", it.Name, it.Quantity, it.Price))
	}
	return strings.Join(parts, "; ")
}

// GET /api/admin/orders.csv?status=
func (h *AdminHandler) OrdersCSV(c *fiber.Ctx) error {
	ords, err := h.Order.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, "admin.orders.export", err)
	}
	rows := make([]*orderRow, 0, len(ords))
	for _, o := range ords {
		rows = append(rows, &orderRow{
			ID:        o.ID,
			CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
			Status:    string(o.Status),
			Name:      o.Name,
			Email:     o.Email,
			Phone:     o.Phone,
			Address:   o.Address,
			Items:     summarizeItems(o.Items),
			Total:     o.Total,
		})
	}
	b, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fail(c, "admin.orders.export", err)
	}
	applog.Audit(c, "admin.orders.export", map[string]any{"rows": len(rows)})
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Send(b)
}

type adminOrderView struct {
	domain.Order
	TotalText string
	Pending   bool
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	st, err := h.Order.Stats(ctx)
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the dashboard"})
	}
	filter := c.Query("status", services.FilterAll)
	ords, err := h.Order.List(ctx, filter)
	if err != nil {
		if _, ok := services.AsValidation(err); !ok {
			applog.Error(c, "admin.dashboard.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the dashboard"})
		}
		filter = services.FilterAll
		if ords, err = h.Order.List(ctx, filter); err != nil {
			return err
		}
	}
	views := make([]adminOrderView, 0, len(ords))
	for _, o := range ords {
		views = append(views, adminOrderView{Order: o, TotalText: pricing.Format(o.Total), Pending: o.Status == domain.StatusPending})
	}
	prods, err := h.Catalog.List(ctx)
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the dashboard"})
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":    st,
		"Filter":   filter,
		"Orders":   views,
		"Products": productViews(prods),
	})
}

// POST /admin/orders/:id/complete
func (h *AdminHandler) CompleteOrder(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	o, err := h.Order.MarkCompleted(c.UserContext(), id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	case err != nil:
		applog.Error(c, "admin.orders.complete.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not update the order"})
	}
	applog.Audit(c, "orders.update", map[string]any{"order_id": o.ID, "status": o.Status})
	return c.Redirect("/admin")
}
