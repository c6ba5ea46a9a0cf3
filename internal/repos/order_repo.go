package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"phoneempire/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, name, email, phone, address, items, total, status, created_at, updated_at`

// List returns orders newest first. An empty status means every order.
func (r *OrderRepo) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	out := []domain.Order{}
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &out, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id DESC`)
	} else {
		err = r.db.SelectContext(ctx, &out, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE status = ? ORDER BY created_at DESC, id DESC`), status)
	}
	return out, errors.Wrap(err, "orders.list")
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id)
	return o, errors.Wrap(err, "orders.get")
}

// Create writes one order row. The id is assigned by the database and the
// status always starts as pending.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	now := time.Now().UTC()
	var out domain.Order
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
	  INSERT INTO orders(name, email, phone, address, items, total, status, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	  RETURNING `+orderCols), o.Name, o.Email, o.Phone, o.Address, o.Items, o.Total, domain.StatusPending, now, now)
	return out, errors.Wrap(err, "orders.create")
}

// UpdateStatus is the only mutation an order accepts after creation.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
	  UPDATE orders SET status = ?, updated_at = ? WHERE id = ?
	  RETURNING `+orderCols), status, time.Now().UTC(), id)
	return out, errors.Wrap(err, "orders.update_status")
}

// CountByStatus returns order counts keyed by status.
func (r *OrderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	var rows []struct {
		Status domain.OrderStatus `db:"status"`
		N      int                `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS n FROM orders GROUP BY status`); err != nil {
		return nil, errors.Wrap(err, "orders.count")
	}
	out := make(map[domain.OrderStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
