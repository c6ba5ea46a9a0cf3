package repos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"phoneempire/internal/domain"
	applog "phoneempire/internal/log"
)

// ErrNoRows is returned (possibly wrapped) when a lookup matches nothing.
var ErrNoRows = sql.ErrNoRows

// IsNotFound unwraps err and reports whether it is ErrNoRows.
func IsNotFound(err error) bool {
	return err != nil && errors.Cause(err) == sql.ErrNoRows
}

// Seed carries the bootstrap admin credentials.
type Seed struct {
	AdminEmail    string
	AdminPassword string
}

// OpenDB connects with driver "sqlite" or "postgres", creates the schema and
// seeds an empty database.
func OpenDB(driver, dsn string, seed Seed) (*sqlx.DB, error) {
	name := driverName(driver)
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	if name == "sqlite" {
		// one writer; every connection to :memory: would otherwise be a fresh database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping db")
	}

	if err := ensureSchema(db); err != nil {
		return nil, errors.Wrap(err, "schema")
	}
	if err := seedProducts(db); err != nil {
		return nil, errors.Wrap(err, "seed products")
	}
	if err := seedAdmin(db, seed); err != nil {
		return nil, errors.Wrap(err, "seed admin")
	}
	return db, nil
}

func driverName(driver string) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return "pgx"
	default:
		return "sqlite"
	}
}

func ensureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";\n") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL CHECK (price >= 0),
  discount REAL NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= 100),
  category TEXT NOT NULL DEFAULT 'iPhone',
  image TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  address TEXT NOT NULL,
  total INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed')),
  items TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'admin',
  created_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price BIGINT NOT NULL CHECK (price >= 0),
  discount DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= 100),
  category VARCHAR(100) NOT NULL DEFAULT 'iPhone',
  image TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders(
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL,
  phone VARCHAR(50) NOT NULL,
  address TEXT NOT NULL,
  total BIGINT NOT NULL,
  status VARCHAR(50) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed')),
  items JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS users(
  id BIGSERIAL PRIMARY KEY,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role VARCHAR(50) NOT NULL DEFAULT 'admin',
  created_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
`

func seedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.products", applog.Fields(map[string]any{"count": len(defaultProducts)})...)

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	q := tx.Rebind(`INSERT INTO products(name,description,price,discount,category,image,created_at,updated_at)
	  VALUES(?,?,?,?,?,?,?,?)`)
	for _, p := range defaultProducts {
		if _, err := tx.Exec(q, p.Name, p.Description, p.Price, p.Discount, p.Category, p.Image, now, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedAdmin creates the first operator account when no user exists.
func seedAdmin(db *sqlx.DB, seed Seed) error {
	users := NewUserRepo(db)
	ctx := context.Background()
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 || seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := users.Create(ctx, seed.AdminEmail, string(h), domain.RoleAdmin); err != nil {
		return err
	}
	applog.L().Info("seed.admin", applog.Fields(map[string]any{"email": seed.AdminEmail})...)
	return nil
}

var defaultProducts = []domain.Product{
	{
		Name: "iPhone 11", Price: 1247500, Discount: 0, Category: "iPhone",
		Description: "6.1-inch Liquid Retina display. A13 Bionic chip. Dual-camera system with Ultra Wide and Wide cameras. Face ID for secure authentication. Up to 17 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 12", Price: 1747500, Discount: 10, Category: "iPhone",
		Description: "6.1-inch Super Retina XDR display. A14 Bionic chip. 5G capable. Dual-camera system with Night mode. Ceramic Shield front cover. MagSafe accessories.",
		Image:       "https://images.unsplash.com/photo-1601784551446-20c9e07cdbdb?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 13", Price: 1997500, Discount: 5, Category: "iPhone",
		Description: "6.1-inch Super Retina XDR display. A15 Bionic chip. Advanced camera system for better photos in any light. Cinematic mode for videos. Up to 19 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1632665852592-f3a9811317bf?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 13 Pro", Price: 2497500, Discount: 15, Category: "iPhone Pro",
		Description: "6.1-inch ProMotion display with adaptive refresh rates up to 120Hz. A15 Bionic chip. Pro camera system with macro photography. Cinematic mode. Up to 22 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1632665852592-f3a9811317bf?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 14", Price: 2247500, Discount: 8, Category: "iPhone",
		Description: "6.1-inch Super Retina XDR display. A15 Bionic chip. Action mode for smooth, steady videos. Crash Detection. Emergency SOS via satellite. Up to 20 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1663491488536-1c6b5e0c5d8b?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 14 Pro", Price: 2747500, Discount: 12, Category: "iPhone Pro",
		Description: "6.1-inch Super Retina XDR display with Dynamic Island. A16 Bionic chip. 48MP main camera. Action mode. Crash Detection. Up to 23 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1663491488536-1c6b5e0c5d8b?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 14 Pro Max", Price: 2997500, Discount: 10, Category: "iPhone Pro Max",
		Description: "6.7-inch Super Retina XDR display with Dynamic Island. A16 Bionic chip. Largest iPhone display. 48MP main camera. Action mode. Up to 29 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1663491488536-1c6b5e0c5d8b?w=400&h=400&fit=crop",
	},
	{
		Name: "iPhone 15", Price: 2497500, Discount: 0, Category: "iPhone",
		Description: "6.1-inch Super Retina XDR display. A16 Bionic chip. USB-C connectivity. Advanced camera system. Action button. Up to 20 hours of video playback.",
		Image:       "https://images.unsplash.com/photo-1695048133142-a4c7887fcd3e?w=400&h=400&fit=crop",
	},
}
