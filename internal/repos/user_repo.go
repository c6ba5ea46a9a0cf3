package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"phoneempire/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT id,email,password_hash,role FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, errors.Wrap(err, "users.by_email")
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT id,email,password_hash,role FROM users WHERE id=?`), id)
	if err != nil {
		return nil, errors.Wrap(err, "users.by_id")
	}
	return &u, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, errors.Wrap(err, "users.count")
}

// Create stores a user with an already hashed password.
func (r *UserRepo) Create(ctx context.Context, email, hash, role string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
	  INSERT INTO users(email,password_hash,role,created_at) VALUES(?,?,?,?)
	  RETURNING id,email,password_hash,role`), email, hash, role, time.Now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "users.create")
	}
	return &u, nil
}
