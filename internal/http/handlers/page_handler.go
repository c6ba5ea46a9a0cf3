package handlers

import (
	"github.com/gofiber/fiber/v2"

	"phoneempire/internal/domain"
	applog "phoneempire/internal/log"
	"phoneempire/internal/pricing"
	"phoneempire/internal/services"
)

type PageHandler struct {
	Catalog *services.CatalogService
}

type productView struct {
	domain.Product
	Pricing      pricing.Breakdown
	PriceText    string
	FinalText    string
	DiscountText string
}

func productViews(ps []domain.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		b := pricing.BreakdownOf(p.Price, p.Discount)
		out = append(out, productView{
			Product:      p,
			Pricing:      b,
			PriceText:    pricing.Format(b.Original),
			FinalText:    pricing.Format(b.Final),
			DiscountText: pricing.Format(-b.Discount),
		})
	}
	return out
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext())
	if err != nil {
		applog.Error(c, "home.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "home", fiber.Map{"Products": productViews(ps)})
}
