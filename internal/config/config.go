package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	DBDriver       string        `yaml:"db_driver"`
	DBDSN          string        `yaml:"db_dsn"`
	LogFile        string        `yaml:"log_file"`
	LogMode        string        `yaml:"log_mode"`
	TemplatesDir   string        `yaml:"templates_dir"`
	StaticDir      string        `yaml:"static_dir"`
	JWTSecret      string        `yaml:"jwt_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AdminEmail     string        `yaml:"admin_email"`
	AdminPassword  string        `yaml:"admin_password"`
	BodyLimit      int           `yaml:"body_limit"`
	// RateLimit is requests per minute per IP; 0 disables the limiter.
	RateLimit      int           `yaml:"rate_limit"`
	// LoginLimit is login attempts per 10 minutes per IP.
	LoginLimit     int           `yaml:"login_limit"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Port:           "3000",
		DBDriver:       "sqlite",
		DBDSN:          "phoneempire.db", // sqlite file in project root
		LogMode:        "development",
		TemplatesDir:   "./web/templates",
		StaticDir:      "./web/static",
		JWTSecret:      "change-me-in-production",
		SessionTTL:     8 * time.Hour,
		RequestTimeout: 10 * time.Second,
		AdminEmail:     "admin@store.com",
		AdminPassword:  "admin123",
		BodyLimit:      10 << 20, // base64 product images travel inline
		RateLimit:      120,
		LoginLimit:     5,
	}
}

// Load layers defaults, the optional YAML file named by PHONEEMPIRE_CONFIG,
// and finally environment variables.
func Load() Config {
	cfg := Defaults()
	if path := os.Getenv("PHONEEMPIRE_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		}
	}
	cfg.mergeEnv()

	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s LOG_MODE=%s SESSION_TTL=%s REQUEST_TIMEOUT=%s JWT_SECRET=%s",
		cfg.Port, cfg.DBDriver, maskDSN(cfg.DBDSN), cfg.LogFile, cfg.LogMode, cfg.SessionTTL, cfg.RequestTimeout, mask(cfg.JWTSecret))
	return cfg
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

func (c *Config) mergeEnv() {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := cast.ToDurationE(v); err == nil && d > 0 {
				*dst = d
			} else {
				log.Printf("[warn] ignoring %s=%q", key, v)
			}
		}
	}

	str(&c.Port, "PORT")
	str(&c.DBDriver, "DB_DRIVER")
	str(&c.DBDSN, "DB_DSN", "DATABASE_URL")
	str(&c.LogFile, "LOG_FILE")
	str(&c.LogMode, "LOG_MODE")
	str(&c.TemplatesDir, "TEMPLATES_DIR")
	str(&c.StaticDir, "STATIC_DIR")
	str(&c.JWTSecret, "JWT_SECRET")
	str(&c.AdminEmail, "ADMIN_EMAIL")
	str(&c.AdminPassword, "ADMIN_PASSWORD")
	dur(&c.SessionTTL, "SESSION_TTL")
	dur(&c.RequestTimeout, "REQUEST_TIMEOUT")
	num := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := cast.ToIntE(v); err == nil && n >= 0 {
				*dst = n
			} else {
				log.Printf("[warn] ignoring %s=%q", key, v)
			}
		}
	}
	num(&c.BodyLimit, "BODY_LIMIT")
	num(&c.RateLimit, "RATE_LIMIT")
	num(&c.LoginLimit, "LOGIN_LIMIT")

	// DATABASE_URL alone implies the hosted postgres deployment.
	if os.Getenv("DB_DRIVER") == "" && strings.HasPrefix(c.DBDSN, "postgres") {
		c.DBDriver = "postgres"
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func maskDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i > 0 {
		if j := strings.Index(dsn, "://"); j > 0 && j < i {
			return dsn[:j+3] + "****" + dsn[i:]
		}
	}
	return dsn
}
