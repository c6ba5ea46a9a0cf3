package storefront

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"phoneempire/internal/domain"
	"phoneempire/internal/pricing"
)

// ErrImageRequired rejects a product form without an image before any call.
var ErrImageRequired = errors.New("product image is required")

// PriceBand filters on the final price.
type PriceBand string

const (
	BandAll       PriceBand = "all"
	BandUnder1M   PriceBand = "under-1m"
	Band1MTo2M    PriceBand = "1m-2m"
	Band2MTo2_5M  PriceBand = "2m-2.5m"
	Band2_5MAndUp PriceBand = "2.5m+"
)

const oneMillion = 1_000_000

// Contains reports whether a final price falls in the band. Lower bounds are
// inclusive.
func (b PriceBand) Contains(final int64) bool {
	switch b {
	case BandUnder1M:
		return final < oneMillion
	case Band1MTo2M:
		return final >= oneMillion && final < 2*oneMillion
	case Band2MTo2_5M:
		return final >= 2*oneMillion && final < 2*oneMillion+oneMillion/2
	case Band2_5MAndUp:
		return final >= 2*oneMillion+oneMillion/2
	}
	return true
}

func (b PriceBand) Valid() bool {
	switch b {
	case "", BandAll, BandUnder1M, Band1MTo2M, Band2MTo2_5M, Band2_5MAndUp:
		return true
	}
	return false
}

// ProductDetail is the detail view of one product.
type ProductDetail struct {
	domain.Product
	Pricing pricing.Breakdown
}

func DetailOf(p domain.Product) ProductDetail {
	return ProductDetail{Product: p, Pricing: pricing.BreakdownOf(p.Price, p.Discount)}
}

type Filter struct {
	Query string
	Band  PriceBand
}

// Catalog holds the last product list fetched from the backend.
type Catalog struct {
	backend Backend
	notes   *Notifier

	mu       sync.RWMutex
	products []domain.Product
}

func NewCatalog(b Backend, n *Notifier) *Catalog {
	return &Catalog{backend: b, notes: n}
}

// Refresh replaces the snapshot. Failures leave the previous snapshot in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	ps, err := c.backend.ListProducts(ctx)
	if err != nil {
		c.notes.Notify(LevelError, failureMessage(err, "Error loading products"))
		return err
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].ID > ps[j].ID })
	c.mu.Lock()
	c.products = ps
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Snapshot() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Product(nil), c.products...)
}

func (c *Catalog) cached(id int64) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Product resolves id from the snapshot and falls back to the backend.
func (c *Catalog) Product(ctx context.Context, id int64) (domain.Product, error) {
	if p, ok := c.cached(id); ok {
		return p, nil
	}
	p, err := c.backend.GetProduct(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		c.notes.Notify(LevelError, "Product not found")
		return domain.Product{}, err
	case err != nil:
		c.notes.Notify(LevelError, failureMessage(err, "Error loading product. Please try again."))
		return domain.Product{}, err
	}
	return p, nil
}

// Filter matches name or description case-insensitively and the final price
// against the band.
func (c *Catalog) Filter(f Filter) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []domain.Product{}
	for _, p := range c.Snapshot() {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if !f.Band.Contains(p.FinalPrice()) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func checkForm(f ProductForm) error {
	if strings.TrimSpace(f.Image) == "" {
		return ErrImageRequired
	}
	return nil
}

// Create submits the admin form. A missing image is refused locally.
func (c *Catalog) Create(ctx context.Context, f ProductForm) (domain.Product, error) {
	if err := checkForm(f); err != nil {
		c.notes.Notify(LevelWarning, "Please select an image for the product")
		return domain.Product{}, err
	}
	p, err := c.backend.CreateProduct(ctx, f)
	if err != nil {
		c.notes.Notify(LevelError, failureMessage(err, "Error saving product"))
		return domain.Product{}, err
	}
	c.notes.Notify(LevelSuccess, "Product added successfully")
	_ = c.Refresh(ctx)
	return p, nil
}

// Update resends every field of the form.
func (c *Catalog) Update(ctx context.Context, id int64, f ProductForm) (domain.Product, error) {
	if err := checkForm(f); err != nil {
		c.notes.Notify(LevelWarning, "Please select an image for the product")
		return domain.Product{}, err
	}
	p, err := c.backend.UpdateProduct(ctx, id, f)
	if err != nil {
		c.notes.Notify(LevelError, failureMessage(err, "Error saving product"))
		return domain.Product{}, err
	}
	c.notes.Notify(LevelSuccess, "Product updated successfully")
	_ = c.Refresh(ctx)
	return p, nil
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if err := c.backend.DeleteProduct(ctx, id); err != nil {
		c.notes.Notify(LevelError, failureMessage(err, "Error deleting product"))
		return err
	}
	c.notes.Notify(LevelSuccess, "Product deleted successfully")
	_ = c.Refresh(ctx)
	return nil
}

// failureMessage picks the user-facing text for a failed call.
func failureMessage(err error, fallback string) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrTimeout):
		return "The server took too long to answer. Please try again."
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		return fallback + ": " + apiErr.Fields[0].Field + " " + apiErr.Fields[0].Reason
	}
	return fallback
}
