package services

import (
	"context"
	"fmt"
	"strings"

	"phoneempire/internal/domain"
	"phoneempire/internal/repos"
	"phoneempire/internal/validate"
)

// FilterAll lists orders of every status.
const FilterAll = "all"

type OrderService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Prods: prods}
}

// NewOrder is the checkout payload. Total is optional; when present it must
// equal the total recomputed from the items.
type NewOrder struct {
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Phone   string             `json:"phone"`
	Address string             `json:"address"`
	Items   []domain.OrderItem `json:"items"`
	Total   *int64             `json:"total"`
}

func (in NewOrder) toOrder() (domain.Order, error) {
	ve := &ValidationError{}
	var o domain.Order

	if v, ok := validate.Required(in.Name, 255); ok {
		o.Name = v
	} else {
		ve.add("name", "required")
	}
	if v, ok := validate.Email(in.Email); ok {
		o.Email = v
	} else {
		ve.add("email", "a valid email address is required")
	}
	if v, ok := validate.Phone(in.Phone); ok {
		o.Phone = v
	} else {
		ve.add("phone", "a phone number is required")
	}
	if v, ok := validate.Required(in.Address, 2000); ok {
		o.Address = v
	} else {
		ve.add("address", "required")
	}

	if len(in.Items) == 0 {
		ve.add("items", "at least one item is required")
	}
	o.Items = make(domain.OrderItems, 0, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		it.Name = strings.TrimSpace(it.Name)
		if it.ID <= 0 {
			ve.add(field+".id", "required")
		}
		if it.Name == "" {
			ve.add(field+".name", "required")
		}
		if !validate.Quantity(it.Quantity) {
			ve.add(field+".quantity", "must be at least 1")
		}
		if !validate.Price(it.Price) {
			ve.add(field+".price", priceReason)
		}
		o.Items = append(o.Items, it)
	}

	if len(ve.Fields) == 0 {
		total, ok := o.Items.CheckedTotal()
		switch {
		case !ok:
			ve.add("total", "out of range")
		case in.Total != nil && *in.Total != total:
			ve.add("total", fmt.Sprintf("does not match items (expected %d)", total))
		}
		o.Total = total
	}
	return o, ve.errOrNil()
}

// Place validates and stores a checkout. The total stored is always the one
// recomputed from item prices and quantities.
func (s *OrderService) Place(ctx context.Context, in NewOrder) (domain.Order, error) {
	o, err := in.toOrder()
	if err != nil {
		return domain.Order{}, err
	}
	return s.Orders.Create(ctx, o)
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if repos.IsNotFound(err) {
		return domain.Order{}, ErrNotFound
	}
	return o, err
}

// List filters by status; "" and "all" mean no filter.
func (s *OrderService) List(ctx context.Context, filter string) ([]domain.Order, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == FilterAll {
		return s.Orders.List(ctx, "")
	}
	st := domain.OrderStatus(filter)
	if !st.Valid() {
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Reason: "must be all, pending or completed"}}}
	}
	return s.Orders.List(ctx, st)
}

// UpdateStatus applies a status change allowed by domain.CanTransition.
// Repeating the completed state returns the order unchanged.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, &ValidationError{Fields: []FieldError{{Field: "status", Reason: "must be pending or completed"}}}
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !domain.CanTransition(cur.Status, status) {
		return cur, ErrInvalidTransition
	}
	if cur.Status == status {
		return cur, nil
	}
	out, err := s.Orders.UpdateStatus(ctx, id, status)
	if repos.IsNotFound(err) {
		return domain.Order{}, ErrNotFound
	}
	return out, err
}

func (s *OrderService) MarkCompleted(ctx context.Context, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, id, domain.StatusCompleted)
}

func (s *OrderService) Stats(ctx context.Context) (domain.Stats, error) {
	products, err := s.Prods.Count(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	byStatus, err := s.Orders.CountByStatus(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	st := domain.Stats{
		Products:  products,
		Pending:   byStatus[domain.StatusPending],
		Completed: byStatus[domain.StatusCompleted],
	}
	for _, n := range byStatus {
		st.Orders += n
	}
	return st, nil
}
