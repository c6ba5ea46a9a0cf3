package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phoneempire/internal/config"
	"phoneempire/internal/domain"
	"phoneempire/internal/http/handlers"
)

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	app, _ := newTestApp(t, func(c *config.Config) { c.LoginLimit = 3 })

	resp, body := doJSON(t, app, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
	require.Equalf(t, http.StatusOK, resp.StatusCode, "body=%s", body)
	out := decode[struct {
		ID        int64     `json:"id"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}](t, body)
	assert.Equal(t, adminEmail, out.Email)
	assert.Equal(t, domain.RoleAdmin, out.Role)
	assert.NotEmpty(t, out.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), out.ExpiresAt, time.Minute)
	require.NotNil(t, cookieNamed(resp, handlers.AdminCookie))
	assert.True(t, cookieNamed(resp, handlers.AdminCookie).HttpOnly)

	resp, body = doJSON(t, app, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, string(body), "token")

	resp, _ = doJSON(t, app, http.MethodPost, "/api/admin/login", map[string]string{"email": "not-an-email", "password": adminPass}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestMutationsRequireAdminToken(t *testing.T) {
	app, _ := newTestApp(t, nil)
	product := map[string]any{"name": "x", "price": 1, "image": "https://img.example.com/x.jpg"}

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/products", product},
		{http.MethodPut, "/api/products/1", product},
		{http.MethodDelete, "/api/products/1", nil},
		{http.MethodGet, "/api/orders", nil},
		{http.MethodGet, "/api/orders/1", nil},
		{http.MethodPut, "/api/orders/1", map[string]string{"status": "completed"}},
		{http.MethodGet, "/api/admin/stats", nil},
		{http.MethodGet, "/api/admin/orders.csv", nil},
	}
	for _, tc := range cases {
		resp, _ := doJSON(t, app, tc.method, tc.path, tc.body, "")
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s without token", tc.method, tc.path)
		resp, _ = doJSON(t, app, tc.method, tc.path, tc.body, "garbage.token.value")
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with bad token", tc.method, tc.path)
	}

	// product is untouched
	resp, body := doJSON(t, app, http.MethodGet, "/api/products/1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "iPhone 11", decode[productJSON](t, body).Name)
}

func TestForgedAndExpiredTokensRejected(t *testing.T) {
	app, _ := newTestApp(t, nil)

	sign := func(secret string, exp time.Time, role string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "1", "role": role, "email": adminEmail, "iss": "phoneempire", "exp": exp.Unix(),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	secret := testConfig().JWTSecret

	resp, _ := doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, sign("someone-else", time.Now().Add(time.Hour), "admin"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "foreign signature")
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, sign(secret, time.Now().Add(-time.Minute), "admin"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expired")
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, sign(secret, time.Now().Add(time.Hour), "customer"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "wrong role")
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, sign(secret, time.Now().Add(time.Hour), "admin"))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "well-formed token")
}

func TestAdminDashboardFormFlow(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, _ := send(t, app, httptestRequest(http.MethodGet, "/admin", nil, ""))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	resp, body := send(t, app, httptestRequest(http.MethodGet, "/admin/login", nil, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	csrfCookie := cookieNamed(resp, "csrf_")
	require.NotNil(t, csrfCookie, "csrf cookie")
	assert.Contains(t, string(body), `name="csrf" value="`+csrfCookie.Value+`"`)

	// missing csrf token
	resp, _ = postForm(t, app, "/admin/login", url.Values{"email": {adminEmail}, "password": {adminPass}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = postForm(t, app, "/admin/login",
		url.Values{"email": {adminEmail}, "password": {"nope-nope"}, "csrf": {csrfCookie.Value}}, csrfCookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postForm(t, app, "/admin/login",
		url.Values{"email": {adminEmail}, "password": {adminPass}, "csrf": {csrfCookie.Value}}, csrfCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
	session := cookieNamed(resp, handlers.AdminCookie)
	require.NotNil(t, session)

	items := []domain.OrderItem{{ID: 3, Name: "iPhone 13", Quantity: 1, Price: 1897625}}
	resp, body = doJSON(t, app, http.MethodPost, "/api/orders", newOrderBody(items, nil), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[domain.Order](t, body)

	req := httptestRequest(http.MethodGet, "/admin", nil, "")
	req.AddCookie(session)
	resp, body = send(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	assert.Contains(t, page, `id="total-orders">1<`)
	assert.Contains(t, page, `id="pending-orders">1<`)
	assert.Contains(t, page, "/admin/orders/"+itoa(order.ID)+"/complete")

	path := "/admin/orders/" + itoa(order.ID) + "/complete"
	resp, _ = postForm(t, app, path, url.Values{}, session)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "csrf required on cookie forms")

	resp, _ = postForm(t, app, path, url.Values{"csrf": {csrfCookie.Value}}, session, csrfCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	req = httptestRequest(http.MethodGet, "/admin?status=completed", nil, "")
	req.AddCookie(session)
	resp, body = send(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = string(body)
	assert.Contains(t, page, `id="completed-orders">1<`)
	assert.False(t, strings.Contains(page, path), "completed orders have no action")
}

func TestTokenLosesAccessWithItsAccount(t *testing.T) {
	app, db := newTestApp(t, nil)
	tok := adminToken(t, app)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := db.Exec(`UPDATE users SET role='staff' WHERE LOWER(email)=LOWER(?)`, adminEmail)
	require.NoError(t, err)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "demoted")

	_, err = db.Exec(`DELETE FROM users WHERE LOWER(email)=LOWER(?)`, adminEmail)
	require.NoError(t, err)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/stats", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "deleted")

	req := httptestRequest(http.MethodGet, "/admin", nil, "")
	req.AddCookie(&http.Cookie{Name: handlers.AdminCookie, Value: tok})
	resp, _ = send(t, app, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}
