package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"phoneempire/internal/config"
	"phoneempire/internal/http/handlers"
	applog "phoneempire/internal/log"
	"phoneempire/internal/repos"
)

const (
	adminEmail = "admin@store.com"
	adminPass  = "admin123"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.TemplatesDir = "../../web/templates"
	cfg.StaticDir = "../../web/static"
	cfg.JWTSecret = "handlers-test-secret"
	cfg.SessionTTL = time.Hour
	cfg.RateLimit = 0
	return cfg
}

// newTestApp wires the real application on an in-memory database.
func newTestApp(t *testing.T, tweak func(*config.Config)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := testConfig()
	if tweak != nil {
		tweak(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, repos.Seed{AdminEmail: adminEmail, AdminPassword: adminPass})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return handlers.NewApp(cfg, handlers.NewDeps(db, cfg)), db
}

// observeLogs routes the process logger into memory for the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(nil) })
	return logs
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, token string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	return send(t, app, httptestRequest(method, path, rdr, token))
}

func httptestRequest(method, path string, body io.Reader, token string) *http.Request {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return send(t, app, req)
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoErrorf(t, json.Unmarshal(body, &v), "body=%s", body)
	return v
}

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
	require.Equalf(t, http.StatusOK, resp.StatusCode, "body=%s", body)
	out := decode[struct {
		Token string `json:"token"`
	}](t, body)
	require.NotEmpty(t, out.Token)
	return out.Token
}

type apiError struct {
	Error  string `json:"error"`
	Fields []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"fields"`
}

func (e apiError) fieldNames() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Field)
	}
	return out
}
