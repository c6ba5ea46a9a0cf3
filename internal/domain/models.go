package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"phoneempire/internal/pricing"
)

type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Discount    float64   `db:"discount" json:"discount"` // percent, 0..100
	Category    string    `db:"category" json:"category"`
	Image       string    `db:"image" json:"image"` // URL or data: URI
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FinalPrice is derived on every read; it is never persisted.
func (p Product) FinalPrice() int64 { return pricing.FinalPrice(p.Price, p.Discount) }

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		FinalPrice int64 `json:"final_price"`
	}{plain(p), p.FinalPrice()})
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// CanTransition reports whether an order in from may be moved to to.
// pending -> completed is the only change; completed -> completed is a no-op.
func CanTransition(from, to OrderStatus) bool {
	switch {
	case from == StatusPending && to == StatusCompleted:
		return true
	case from == StatusCompleted && to == StatusCompleted:
		return true
	}
	return false
}

// OrderItem is a value snapshot of a cart line at checkout. Price is the
// final unit price charged, independent of the live catalog.
type OrderItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// OrderItems is persisted as one JSON document; element order is kept.
type OrderItems []OrderItem

func (it OrderItems) Value() (driver.Value, error) {
	if it == nil {
		it = OrderItems{}
	}
	b, err := json.Marshal([]OrderItem(it))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (it *OrderItems) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*it = OrderItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("order items: unsupported column type %T", src)
	}
	var out []OrderItem
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("order items: %w", err)
	}
	*it = out
	return nil
}

// Total sums price*quantity over the snapshot.
func (it OrderItems) Total() int64 {
	var sum int64
	for _, x := range it {
		sum += pricing.LineTotal(x.Price, x.Quantity)
	}
	return sum
}

// CheckedTotal is Total that reports false instead of wrapping around when
// a line or the running sum leaves the int64 range.
func (it OrderItems) CheckedTotal() (int64, bool) {
	var sum int64
	for _, x := range it {
		if x.Price < 0 || x.Quantity < 0 {
			return 0, false
		}
		if x.Quantity > 0 && x.Price > math.MaxInt64/int64(x.Quantity) {
			return 0, false
		}
		line := pricing.LineTotal(x.Price, x.Quantity)
		if sum > math.MaxInt64-line {
			return 0, false
		}
		sum += line
	}
	return sum, true
}

type Order struct {
	ID        int64       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Email     string      `db:"email" json:"email"`
	Phone     string      `db:"phone" json:"phone"`
	Address   string      `db:"address" json:"address"`
	Items     OrderItems  `db:"items" json:"items"`
	Total     int64       `db:"total" json:"total"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Stats backs the admin dashboard counters.
type Stats struct {
	Products  int `json:"total_products"`
	Orders    int `json:"total_orders"`
	Pending   int `json:"pending_orders"`
	Completed int `json:"completed_orders"`
}
