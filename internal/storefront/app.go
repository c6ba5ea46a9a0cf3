package storefront

import (
	"context"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// TokenHolder is implemented by backends that send an admin session token.
type TokenHolder interface {
	SetToken(string)
}

// App is the storefront state a front end owns: catalog snapshot, cart,
// checkout and preferences, all sharing one notifier and one store.
type App struct {
	Notes    *Notifier
	Catalog  *Catalog
	Cart     *Cart
	Checkout *Checkout

	backend Backend
	store   Storage
}

func NewApp(b Backend, store Storage) *App {
	notes := NewNotifier()
	catalog := NewCatalog(b, notes)
	cart := NewCart(store, notes, catalog)
	return &App{
		Notes:    notes,
		Catalog:  catalog,
		Cart:     cart,
		Checkout: NewCheckout(b, cart, notes),
		backend:  b,
		store:    store,
	}
}

// Restore rehydrates the cart and a saved admin session.
func (a *App) Restore() error {
	if err := a.Cart.Load(); err != nil {
		return err
	}
	tok, err := a.store.Load(KeySession)
	if err != nil {
		return err
	}
	if th, ok := a.backend.(TokenHolder); ok && len(tok) > 0 {
		th.SetToken(string(tok))
	}
	return nil
}

func (a *App) RefreshCatalog(ctx context.Context) error { return a.Catalog.Refresh(ctx) }

func (a *App) Product(ctx context.Context, id int64) (ProductDetail, error) {
	p, err := a.Catalog.Product(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	return DetailOf(p), nil
}

// Login signs in and keeps the token for later runs.
func (a *App) Login(ctx context.Context, email, password string) (Session, error) {
	s, err := a.Checkout.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s, a.store.Save(KeySession, []byte(s.Token))
}

func (a *App) Logout() error {
	if th, ok := a.backend.(TokenHolder); ok {
		th.SetToken("")
	}
	return a.store.Delete(KeySession)
}

// Theme returns the saved preference, light when none was saved.
func (a *App) Theme() (string, error) {
	raw, err := a.store.Load(KeyTheme)
	if err != nil {
		return ThemeLight, err
	}
	if string(raw) == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (a *App) ToggleTheme() (string, error) {
	cur, err := a.Theme()
	if err != nil {
		return cur, err
	}
	next := ThemeDark
	if cur == ThemeDark {
		next = ThemeLight
	}
	if err := a.store.Save(KeyTheme, []byte(next)); err != nil {
		return cur, err
	}
	return next, nil
}
