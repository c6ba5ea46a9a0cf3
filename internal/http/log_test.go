package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"phoneempire/internal/domain"
)

func TestAccessDeniedIsLogged(t *testing.T) {
	logs := observeLogs(t)
	app, _ := newTestApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/products/1", nil, "forged")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	denied := logs.FilterMessage("access.denied.admin").All()
	require.Len(t, denied, 1)
	assert.Equal(t, zapcore.WarnLevel, denied[0].Level)
	ctx := denied[0].ContextMap()
	assert.Equal(t, "/api/products/1", ctx["path"])
	assert.Equal(t, "DELETE", ctx["method"])
	assert.NotEmpty(t, ctx["req_id"])
}

func TestAuthEventsAreLogged(t *testing.T) {
	logs := observeLogs(t)
	app, _ := newTestApp(t, nil)

	doJSON(t, app, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": "bad-password"}, "")
	fails := logs.FilterMessage("auth.login.fail").All()
	require.Len(t, fails, 1)
	assert.NotContains(t, fails[0].ContextMap()["fields"], "password")

	adminToken(t, app)
	ok := logs.FilterMessage("auth.login.success").All()
	require.Len(t, ok, 1)
	fields, _ := ok[0].ContextMap()["fields"].(map[string]any)
	assert.Equal(t, "audit", fields["kind"])
	assert.Equal(t, adminEmail, fields["email"])
}

func TestAdminMutationsAreAudited(t *testing.T) {
	logs := observeLogs(t)
	app, _ := newTestApp(t, nil)
	token := adminToken(t, app)

	items := []domain.OrderItem{{ID: 1, Name: "iPhone 11", Quantity: 1, Price: 1247500}}
	resp, body := doJSON(t, app, http.MethodPost, "/api/orders", newOrderBody(items, 1247500), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[domain.Order](t, body)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/orders/"+itoa(order.ID), map[string]string{"status": "completed"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/products/2", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	placed := logs.FilterMessage("order.place").All()
	require.Len(t, placed, 1)
	pf, _ := placed[0].ContextMap()["fields"].(map[string]any)
	assert.EqualValues(t, 1247500, pf["total"])

	updated := logs.FilterMessage("orders.update").All()
	require.Len(t, updated, 1)
	assert.EqualValues(t, 1, updated[0].ContextMap()["user_id"], "acting admin is recorded")

	assert.Equal(t, 1, logs.FilterMessage("products.delete").Len())
}

func TestValidationFailuresAreLogged(t *testing.T) {
	logs := observeLogs(t)
	app, _ := newTestApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{"items": []any{}}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, logs.FilterMessage("validation.fail").Len())
}
