package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"

	"phoneempire/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrTimeout  = errors.New("request timed out")
)

// APIError is a non-2xx answer other than 404.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"error"`
	Fields  []FieldError `json:"fields"`
}

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return fmt.Sprintf("server answered %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// ProductForm is the admin product form; every field is sent on update.
type ProductForm struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Discount    float64 `json:"discount"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

type OrderRequest struct {
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Phone   string             `json:"phone"`
	Address string             `json:"address"`
	Items   []domain.OrderItem `json:"items"`
	Total   int64              `json:"total"`
}

type Session struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Backend is the persistence service as seen from the storefront.
type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, f ProductForm) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, f ProductForm) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	PlaceOrder(ctx context.Context, o OrderRequest) (domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	ListOrders(ctx context.Context, status string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error)
	Stats(ctx context.Context) (domain.Stats, error)

	Login(ctx context.Context, email, password string) (Session, error)
}

// Client talks to the JSON API. Every call is bounded by Timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
		Timeout: timeout,
	}
}

// SetToken installs the admin session token sent as a bearer credential.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) call(ctx context.Context, method, path string, query gout.H, in, out any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	url := c.BaseURL + path
	g := gout.New(c.HTTP)
	var df *dataflow.DataFlow
	switch method {
	case http.MethodGet:
		df = g.GET(url)
	case http.MethodPost:
		df = g.POST(url)
	case http.MethodPut:
		df = g.PUT(url)
	case http.MethodDelete:
		df = g.DELETE(url)
	default:
		return fmt.Errorf("unsupported method %s", method)
	}
	if query != nil {
		df = df.SetQuery(query)
	}
	if in != nil {
		df = df.SetJSON(in)
	}
	if tok := c.Token(); tok != "" {
		df = df.SetHeader(gout.H{"Authorization": "Bearer " + tok})
	}

	var (
		raw  []byte
		code int
	)
	err := df.WithContext(ctx).BindBody(&raw).Code(&code).Do()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusGatewayTimeout:
		return ErrTimeout
	case code >= http.StatusBadRequest:
		apiErr := &APIError{Status: code}
		if jerr := json.Unmarshal(raw, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(code)
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func productPath(id int64) string { return "/api/products/" + strconv.FormatInt(id, 10) }
func orderPath(id int64) string   { return "/api/orders/" + strconv.FormatInt(id, 10) }

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	return out, c.call(ctx, http.MethodGet, "/api/products", nil, nil, &out)
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	return out, c.call(ctx, http.MethodGet, productPath(id), nil, nil, &out)
}

func (c *Client) CreateProduct(ctx context.Context, f ProductForm) (domain.Product, error) {
	var out domain.Product
	return out, c.call(ctx, http.MethodPost, "/api/products", nil, f, &out)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, f ProductForm) (domain.Product, error) {
	var out domain.Product
	return out, c.call(ctx, http.MethodPut, productPath(id), nil, f, &out)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, productPath(id), nil, nil, nil)
}

func (c *Client) PlaceOrder(ctx context.Context, o OrderRequest) (domain.Order, error) {
	var out domain.Order
	return out, c.call(ctx, http.MethodPost, "/api/orders", nil, o, &out)
}

func (c *Client) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var out domain.Order
	return out, c.call(ctx, http.MethodGet, orderPath(id), nil, nil, &out)
}

func (c *Client) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	var out []domain.Order
	var q gout.H
	if status != "" {
		q = gout.H{"status": status}
	}
	return out, c.call(ctx, http.MethodGet, "/api/orders", q, nil, &out)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	return out, c.call(ctx, http.MethodPut, orderPath(id), nil, map[string]domain.OrderStatus{"status": status}, &out)
}

func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var out domain.Stats
	return out, c.call(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &out)
}

// Login checks the credentials and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out Session
	err := c.call(ctx, http.MethodPost, "/api/admin/login", nil, map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return Session{}, err
	}
	c.SetToken(out.Token)
	return out, nil
}
