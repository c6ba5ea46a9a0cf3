package storefront_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"phoneempire/internal/domain"
	"phoneempire/internal/storefront"
)

// fakeBackend is an in-memory Backend that records what was called.
type fakeBackend struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	nextID   int64
	calls    map[string]int

	placeErr error
	listErr  error
	placed   []storefront.OrderRequest
	token    string
}

func newFake(products ...domain.Product) *fakeBackend {
	f := &fakeBackend{
		products: map[int64]domain.Product{},
		orders:   map[int64]domain.Order{},
		nextID:   100,
		calls:    map[string]int{},
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeBackend) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) SetToken(tok string) { f.token = tok }

func (f *fakeBackend) ListProducts(context.Context) ([]domain.Product, error) {
	f.hit("ListProducts")
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeBackend) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	f.hit("GetProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, storefront.ErrNotFound
	}
	return p, nil
}

func (f *fakeBackend) CreateProduct(_ context.Context, pf storefront.ProductForm) (domain.Product, error) {
	f.hit("CreateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := domain.Product{ID: f.nextID, Name: pf.Name, Description: pf.Description, Price: pf.Price, Discount: pf.Discount, Category: pf.Category, Image: pf.Image}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, id int64, pf storefront.ProductForm) (domain.Product, error) {
	f.hit("UpdateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return domain.Product{}, storefront.ErrNotFound
	}
	p := domain.Product{ID: id, Name: pf.Name, Description: pf.Description, Price: pf.Price, Discount: pf.Discount, Category: pf.Category, Image: pf.Image}
	f.products[id] = p
	return p, nil
}

func (f *fakeBackend) DeleteProduct(_ context.Context, id int64) error {
	f.hit("DeleteProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeBackend) PlaceOrder(_ context.Context, o storefront.OrderRequest) (domain.Order, error) {
	f.hit("PlaceOrder")
	if f.placeErr != nil {
		return domain.Order{}, f.placeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, o)
	f.nextID++
	order := domain.Order{
		ID: f.nextID, Name: o.Name, Email: o.Email, Phone: o.Phone, Address: o.Address,
		Items: o.Items, Total: o.Total, Status: domain.StatusPending, CreatedAt: time.Now(),
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeBackend) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	f.hit("GetOrder")
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, storefront.ErrNotFound
	}
	return o, nil
}

func (f *fakeBackend) ListOrders(_ context.Context, status string) ([]domain.Order, error) {
	f.hit("ListOrders")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Order{}
	for _, o := range f.orders {
		if status == "" || string(o.Status) == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeBackend) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	f.hit("UpdateOrderStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, storefront.ErrNotFound
	}
	o.Status = status
	f.orders[id] = o
	return o, nil
}

func (f *fakeBackend) Stats(context.Context) (domain.Stats, error) {
	f.hit("Stats")
	return domain.Stats{Products: len(f.products), Orders: len(f.orders)}, nil
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (storefront.Session, error) {
	f.hit("Login")
	if password != "admin123" {
		return storefront.Session{}, &storefront.APIError{Status: 401, Message: "invalid credentials"}
	}
	return storefront.Session{ID: 1, Email: email, Role: domain.RoleAdmin, Token: "tok-" + email}, nil
}

var errDiskFull = errors.New("disk full")

// flakyStorage wraps MemoryStorage with switchable failures.
type flakyStorage struct {
	*storefront.MemoryStorage
	mu        sync.Mutex
	failSave  bool
	loadFails int
}

func newFlaky() *flakyStorage {
	return &flakyStorage{MemoryStorage: storefront.NewMemoryStorage()}
}

func (s *flakyStorage) setFailSave(v bool) {
	s.mu.Lock()
	s.failSave = v
	s.mu.Unlock()
}

func (s *flakyStorage) Load(key string) ([]byte, error) {
	s.mu.Lock()
	fail := s.loadFails > 0
	if fail {
		s.loadFails--
	}
	s.mu.Unlock()
	if fail {
		return nil, errDiskFull
	}
	return s.MemoryStorage.Load(key)
}

func (s *flakyStorage) Save(key string, val []byte) error {
	s.mu.Lock()
	fail := s.failSave
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.MemoryStorage.Save(key, val)
}

// noticeLog collects notices published on an app's notifier.
type noticeLog struct {
	mu  sync.Mutex
	all []storefront.Notice
}

func watchNotices(t *testing.T, n *storefront.Notifier) *noticeLog {
	t.Helper()
	l := &noticeLog{}
	require.NoError(t, n.OnNotice(func(x storefront.Notice) {
		l.mu.Lock()
		l.all = append(l.all, x)
		l.mu.Unlock()
	}))
	return l
}

func (l *noticeLog) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.all))
	for _, n := range l.all {
		out = append(out, n.Message)
	}
	return out
}

func (l *noticeLog) last() storefront.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.all) == 0 {
		return storefront.Notice{}
	}
	return l.all[len(l.all)-1]
}

var (
	phone7  = domain.Product{ID: 7, Name: "iPhone 7", Description: "Classic", Price: 1000, Discount: 10, Image: "img7.jpg"}
	phone11 = domain.Product{ID: 11, Name: "iPhone 11", Description: "Dual camera", Price: 1247500, Image: "img11.jpg"}
	phone14 = domain.Product{ID: 14, Name: "iPhone 14 Pro", Description: "Dynamic Island", Price: 2450000, Discount: 5, Image: "img14.jpg"}
)
