package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"phoneempire/internal/domain"
	"phoneempire/internal/pricing"
)

// Line is one product in the cart. FinalPrice is frozen when the product is
// first added and is not refreshed from the catalog afterwards.
type Line struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Discount   float64 `json:"discount"`
	Image      string  `json:"image"`
	FinalPrice int64   `json:"finalPrice"`
	Quantity   int     `json:"quantity"`
}

func (l Line) Subtotal() int64 { return pricing.LineTotal(l.FinalPrice, l.Quantity) }

// QuantityResult tells the caller what ChangeQuantity did.
type QuantityResult int

const (
	QuantityUpdated QuantityResult = iota
	QuantityAtMinimum
	QuantityNoLine
)

// ProductResolver finds a product for Add.
type ProductResolver interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
}

// Cart is the client-side cart. Every mutation is written to the store
// before the refresh event goes out.
type Cart struct {
	store    Storage
	notes    *Notifier
	resolver ProductResolver

	mu     sync.Mutex
	lines  []Line
	loaded bool
}

func NewCart(store Storage, notes *Notifier, resolver ProductResolver) *Cart {
	return &Cart{store: store, notes: notes, resolver: resolver}
}

// Load rehydrates the cart from the store. Only the first successful read
// counts; an unreadable document starts an empty cart.
func (c *Cart) Load() error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	raw, err := c.store.Load(KeyCart)
	if err != nil {
		// not latched: the next call reads again
		c.mu.Unlock()
		return err
	}
	c.loaded = true
	if len(raw) == 0 {
		c.mu.Unlock()
		return nil
	}
	var lines []Line
	if jerr := json.Unmarshal(raw, &lines); jerr != nil {
		c.mu.Unlock()
		c.notes.Notify(LevelWarning, "Saved cart could not be read and was reset")
		return nil
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		c.lines = append(c.lines, l)
	}
	c.mu.Unlock()
	return nil
}

// Add puts one unit of a product in the cart, merging with an existing line.
func (c *Cart) Add(ctx context.Context, id int64) error {
	if err := c.Load(); err != nil {
		return err
	}
	p, err := c.resolver.Product(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	next := c.copyLines()
	if i := c.find(id); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, Line{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Discount:   p.Discount,
			Image:      p.Image,
			FinalPrice: p.FinalPrice(),
			Quantity:   1,
		})
	}
	sum, err := c.commit(next)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notes.cartChanged(sum)
	c.notes.Notify(LevelSuccess, p.Name+" added to cart")
	return nil
}

// Remove deletes the line for id. A missing line gets a warning, not an error.
func (c *Cart) Remove(id int64) error {
	if err := c.Load(); err != nil {
		return err
	}
	c.mu.Lock()
	i := c.find(id)
	if i < 0 {
		c.mu.Unlock()
		c.notes.Notify(LevelWarning, "Item is no longer in the cart")
		return nil
	}
	name := c.lines[i].Name
	next := c.copyLines()
	next = append(next[:i], next[i+1:]...)
	sum, err := c.commit(next)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notes.cartChanged(sum)
	c.notes.Notify(LevelInfo, name+" removed from cart")
	return nil
}

// ChangeQuantity applies delta to a line. Going below 1 is refused and the
// line stays at 1.
func (c *Cart) ChangeQuantity(id int64, delta int) (QuantityResult, error) {
	if err := c.Load(); err != nil {
		return QuantityNoLine, err
	}
	c.mu.Lock()
	i := c.find(id)
	if i < 0 {
		c.mu.Unlock()
		c.notes.Notify(LevelWarning, "Item is no longer in the cart")
		return QuantityNoLine, nil
	}
	name, qty := c.lines[i].Name, c.lines[i].Quantity+delta
	if qty < 1 {
		c.mu.Unlock()
		c.notes.Notify(LevelWarning, "Minimum quantity is 1")
		return QuantityAtMinimum, nil
	}
	next := c.copyLines()
	next[i].Quantity = qty
	sum, err := c.commit(next)
	c.mu.Unlock()
	if err != nil {
		return QuantityUpdated, err
	}
	c.notes.cartChanged(sum)
	switch {
	case delta > 0:
		c.notes.Notify(LevelSuccess, fmt.Sprintf("%s quantity increased to %d", name, qty))
	case delta < 0:
		c.notes.Notify(LevelInfo, fmt.Sprintf("%s quantity decreased to %d", name, qty))
	}
	return QuantityUpdated, nil
}

func (c *Cart) Lines() []Line {
	_ = c.Load()
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Total is the sum of frozen final price times quantity.
func (c *Cart) Total() int64 {
	var sum int64
	for _, l := range c.Lines() {
		sum += l.Subtotal()
	}
	return sum
}

// ItemCount is the badge number: units, not lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines() {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Empty() bool { return len(c.Lines()) == 0 }

// Clear empties the cart. Checkout calls it after the order is stored.
func (c *Cart) Clear() error {
	if err := c.Load(); err != nil {
		return err
	}
	c.mu.Lock()
	sum, err := c.commit(nil)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notes.cartChanged(sum)
	return nil
}

// Items snapshots the cart as order items priced at the frozen final price.
func (c *Cart) Items() []domain.OrderItem {
	lines := c.Lines()
	out := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.OrderItem{ID: l.ID, Name: l.Name, Quantity: l.Quantity, Price: l.FinalPrice})
	}
	return out
}

func (c *Cart) find(id int64) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) copyLines() []Line {
	return append([]Line(nil), c.lines...)
}

// commit writes next to the store and adopts it only after the write
// succeeds. mu must be held; callers publish the summary after unlocking.
func (c *Cart) commit(next []Line) (CartSummary, error) {
	doc := next
	if doc == nil {
		doc = []Line{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return CartSummary{}, err
	}
	if err := c.store.Save(KeyCart, raw); err != nil {
		return CartSummary{}, err
	}
	c.lines = next
	s := CartSummary{Lines: len(next)}
	for _, l := range next {
		s.Items += l.Quantity
		s.Total += l.Subtotal()
	}
	return s, nil
}
