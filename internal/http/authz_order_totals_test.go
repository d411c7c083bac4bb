package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = map[string]any{
	"line1": "1 MG Road", "city": "Pune", "state": "MH", "postalCode": "411001",
}

// secondShopper registers and verifies another account and returns its token.
func secondShopper(t *testing.T, env *testEnv) string {
	t.Helper()
	resp, _ := env.do(t, "POST", "/api/auth/register", "", map[string]string{
		"name": "Kabir", "email": "kabir@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body := env.do(t, "POST", "/api/auth/verify-otp", "", map[string]string{"email": "kabir@example.com", "otp": testOTP})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func TestOrderTotalsComputedServerSide(t *testing.T) {
	env := newEnv(t)
	tok := env.userToken(t)

	items := []map[string]any{
		// price is ignored; the server loads live prices
		{"productId": "kds-classic", "variantId": "var-classic-prm-m-cit", "quantity": 2, "price": 1},
		{"productId": "kds-spray", "variantId": "var-spray-std-m-cit", "quantity": 1},
	}

	resp, body := env.do(t, "POST", "/api/orders/preview", "", map[string]any{"items": items})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	pricing := body["pricing"].(map[string]any)
	assert.EqualValues(t, 1247, pricing["subtotal"])
	assert.EqualValues(t, 1521.46, pricing["total"])

	resp, body = env.do(t, "POST", "/api/orders", tok, map[string]any{"items": items, "shippingAddress": testAddress})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	order := body["order"].(map[string]any)
	pricing = order["pricing"].(map[string]any)
	assert.EqualValues(t, 1247, pricing["subtotal"])
	assert.EqualValues(t, 224.46, pricing["gst"])
	assert.EqualValues(t, 50, pricing["deliveryCharge"])
	assert.EqualValues(t, 1521.46, pricing["total"])
	assert.Equal(t, "Pending", order["orderStatus"])
	assert.Regexp(t, `^KDS-\d{8}-[0-9A-F]{6}$`, order["orderNumber"])
	id := order["id"].(string)

	// confirmation mail went to the shopper
	msg, ok := env.Mail.Last()
	require.True(t, ok)
	assert.Contains(t, msg.Subject, order["orderNumber"])

	resp, body = env.do(t, "GET", "/api/orders", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["orders"], 1)

	resp, _ = env.do(t, "GET", "/api/orders/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	other := secondShopper(t, env)
	resp, body = env.do(t, "GET", "/api/orders/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, body, "order")
}

func TestOrderRejectsUnavailableStock(t *testing.T) {
	env := newEnv(t)
	tok := env.userToken(t)

	resp, body := env.do(t, "POST", "/api/orders", tok, map[string]any{
		"items":           []map[string]any{{"productId": "kds-classic", "variantId": "var-classic-prm-m-cit", "quantity": 9}},
		"shippingAddress": testAddress,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["message"], "insufficient stock")

	resp, _ = env.do(t, "POST", "/api/orders", tok, map[string]any{
		"items": []map[string]any{{"productId": "kds-classic", "variantId": "var-classic-prm-m-cit", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing address")
}

func TestAdminOrderStatusUpdates(t *testing.T) {
	env := newEnv(t)
	tok := env.userToken(t)
	adminTok := env.adminToken(t)

	resp, body := env.do(t, "POST", "/api/orders", tok, map[string]any{
		"items":           []map[string]any{{"productId": "kds-spray", "variantId": "var-spray-std-m-cit", "quantity": 1}},
		"shippingAddress": testAddress,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := body["order"].(map[string]any)["id"].(string)

	resp, _ = env.do(t, "PUT", "/api/orders/"+id+"/status", adminTok, map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, "PUT", "/api/orders/"+id+"/status", adminTok, map[string]string{"status": "Shipped", "note": "AWB 1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	order := body["order"].(map[string]any)
	assert.Equal(t, "Shipped", order["orderStatus"])
	history := order["statusHistory"].([]any)
	require.Len(t, history, 2)
	assert.Equal(t, "AWB 1234", history[1].(map[string]any)["note"])

	resp, body = env.do(t, "PUT", "/api/orders/"+id+"/payment", adminTok, map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Completed", body["order"].(map[string]any)["paymentInfo"].(map[string]any)["status"])

	resp, body = env.do(t, "GET", "/api/orders/admin/all", adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["orders"], 1)
}

func TestStrictPolicyRejectsSkippedSteps(t *testing.T) {
	env := newEnv(t, withStrictOrders())
	tok := env.userToken(t)
	adminTok := env.adminToken(t)

	resp, body := env.do(t, "POST", "/api/orders", tok, map[string]any{
		"items":           []map[string]any{{"productId": "kds-spray", "variantId": "var-spray-std-m-cit", "quantity": 1}},
		"shippingAddress": testAddress,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["order"].(map[string]any)["id"].(string)

	resp, _ = env.do(t, "PUT", "/api/orders/"+id+"/status", adminTok, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = env.do(t, "PUT", "/api/orders/"+id+"/status", adminTok, map[string]string{"status": "Confirmed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
