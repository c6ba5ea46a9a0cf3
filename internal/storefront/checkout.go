package storefront

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"phoneempire/internal/domain"
)

// ErrEmptyCart is returned by Submit before any call is made.
var ErrEmptyCart = errors.New("cart is empty")

type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Stage is one confirmation notice shown After the order was stored.
type Stage struct {
	After   time.Duration
	Level   Level
	Message string
}

// DefaultStages mirror the confirmation the web shop plays after checkout.
// None of them deliver anything.
var DefaultStages = []Stage{
	{After: 500 * time.Millisecond, Level: LevelSuccess, Message: "📧 Order sent to admin email"},
	{After: time.Second, Level: LevelSuccess, Message: "📱 SMS confirmation sent"},
	{After: 2500 * time.Millisecond, Level: LevelSuccess, Message: "Order placed successfully!"},
}

// DefaultDismiss is when the checkout view closes after a stored order.
const DefaultDismiss = 2500 * time.Millisecond

// Checkout turns the cart into an order and drives the admin order actions.
type Checkout struct {
	backend Backend
	cart    *Cart
	notes   *Notifier

	Stages  []Stage
	Dismiss time.Duration

	pending sync.WaitGroup
}

func NewCheckout(b Backend, cart *Cart, notes *Notifier) *Checkout {
	return &Checkout{
		backend: b,
		cart:    cart,
		notes:   notes,
		Stages:  DefaultStages,
		Dismiss: DefaultDismiss,
	}
}

// Submit stores the cart as a new order. The server assigns the id and
// timestamp. On failure the cart is left as it was.
func (co *Checkout) Submit(ctx context.Context, who Contact) (domain.Order, error) {
	if co.cart.Empty() {
		co.notes.Notify(LevelWarning, "Your cart is empty!")
		return domain.Order{}, ErrEmptyCart
	}
	req := OrderRequest{
		Name:    strings.TrimSpace(who.Name),
		Email:   strings.TrimSpace(who.Email),
		Phone:   strings.TrimSpace(who.Phone),
		Address: strings.TrimSpace(who.Address),
		Items:   co.cart.Items(),
		Total:   co.cart.Total(),
	}
	order, err := co.backend.PlaceOrder(ctx, req)
	if err != nil {
		co.notes.Notify(LevelError, failureMessage(err, "Error placing order. Please try again."))
		return domain.Order{}, err
	}
	if err := co.cart.Clear(); err != nil {
		return order, err
	}
	co.confirm()
	return order, nil
}

func (co *Checkout) confirm() {
	for _, st := range co.Stages {
		st := st
		co.pending.Add(1)
		time.AfterFunc(st.After, func() {
			defer co.pending.Done()
			co.notes.Notify(st.Level, st.Message)
		})
	}
	co.pending.Add(1)
	time.AfterFunc(co.Dismiss, func() {
		defer co.pending.Done()
		co.notes.checkoutClosed()
	})
}

// Wait blocks until every scheduled confirmation notice has been shown.
func (co *Checkout) Wait() { co.pending.Wait() }

// MarkCompleted completes an order. An order that no longer exists is ignored.
func (co *Checkout) MarkCompleted(ctx context.Context, id int64) (domain.Order, error) {
	if _, err := co.backend.GetOrder(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Order{}, nil
		}
		co.notes.Notify(LevelError, failureMessage(err, "Error updating order"))
		return domain.Order{}, err
	}
	order, err := co.backend.UpdateOrderStatus(ctx, id, domain.StatusCompleted)
	switch {
	case errors.Is(err, ErrNotFound):
		return domain.Order{}, nil
	case err != nil:
		co.notes.Notify(LevelError, failureMessage(err, "Error updating order"))
		return domain.Order{}, err
	}
	co.notes.Notify(LevelSuccess, "Order marked as completed")
	return order, nil
}

// FilterByStatus lists orders; "all" and "" mean every order.
func (co *Checkout) FilterByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	if status == "all" {
		status = ""
	}
	orders, err := co.backend.ListOrders(ctx, status)
	if err != nil {
		co.notes.Notify(LevelError, failureMessage(err, "Error loading orders"))
		return nil, err
	}
	return orders, nil
}

func (co *Checkout) Stats(ctx context.Context) (domain.Stats, error) {
	return co.backend.Stats(ctx)
}

func (co *Checkout) Login(ctx context.Context, email, password string) (Session, error) {
	s, err := co.backend.Login(ctx, email, password)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			co.notes.Notify(LevelError, "Invalid email or password")
		} else {
			co.notes.Notify(LevelError, failureMessage(err, "Login failed"))
		}
		return Session{}, err
	}
	co.notes.Notify(LevelSuccess, "Login successful!")
	return s, nil
}
