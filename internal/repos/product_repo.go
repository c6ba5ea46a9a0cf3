package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"phoneempire/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, price, discount, category, image, created_at, updated_at`

// List returns the whole catalog, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+productCols+` FROM products ORDER BY id DESC`)
	return out, errors.Wrap(err, "products.list")
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, errors.Wrap(err, "products.get")
}

// Create inserts p and returns the stored row with its assigned id.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	now := time.Now().UTC()
	var out domain.Product
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
	  INSERT INTO products(name, description, price, discount, category, image, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	  RETURNING `+productCols), p.Name, p.Description, p.Price, p.Discount, p.Category, p.Image, now, now)
	return out, errors.Wrap(err, "products.create")
}

// Update replaces every editable field of product p.ID. A missing row
// surfaces as ErrNoRows.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
	  UPDATE products
	  SET name = ?, description = ?, price = ?, discount = ?, category = ?, image = ?, updated_at = ?
	  WHERE id = ?
	  RETURNING `+productCols), p.Name, p.Description, p.Price, p.Discount, p.Category, p.Image, time.Now().UTC(), p.ID)
	return out, errors.Wrap(err, "products.update")
}

// Delete removes the row permanently; ErrNoRows when nothing matched.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "products.delete")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrap(ErrNoRows, "products.delete")
	}
	return nil
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, errors.Wrap(err, "products.count")
}
