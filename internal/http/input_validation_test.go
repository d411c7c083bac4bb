package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputValidation(t *testing.T) {
	env := newEnv(t)

	// malformed JSON
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := env.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", body["message"])

	cases := []struct {
		name string
		path string
		body map[string]string
		want string
	}{
		{"bad email", "/api/auth/register", map[string]string{"name": "A", "email": "not-an-email", "password": "secret1"}, "a valid email is required"},
		{"short password", "/api/auth/register", map[string]string{"name": "A", "email": "a@example.com", "password": "123"}, "password must be at least 6 characters"},
		{"blank name", "/api/auth/register", map[string]string{"name": "  ", "email": "a@example.com", "password": "secret1"}, "name is required"},
		{"short reset password", "/api/auth/reset-password", map[string]string{"email": seedUserEmail, "otp": testOTP, "newPassword": "1"}, "password must be at least 6 characters"},
	}
	for _, tc := range cases {
		resp, body := env.do(t, "POST", tc.path, "", tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.name)
		assert.Equal(t, tc.want, body["message"], tc.name)
	}
}

func TestCatalogRejectsBadIdentifiersAndQueries(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.do(t, "GET", "/api/products/bad%20id%3B", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/api/products/missing-product", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.do(t, "GET", "/api/products?q=%3Cscript%3E", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["message"])

	resp, body = env.do(t, "GET", "/api/products?q=spray", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["products"], 1)
}

func TestAddressValidation(t *testing.T) {
	env := newEnv(t)
	tok := env.userToken(t)

	resp, body := env.do(t, "POST", "/api/users/addresses", tok, map[string]string{"line1": "1 MG Road"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "required")

	resp, body = env.do(t, "POST", "/api/users/addresses", tok, testAddress)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	addrs := body["user"].(map[string]any)["addresses"].([]any)
	require.Len(t, addrs, 1)
	addr := addrs[0].(map[string]any)
	assert.Equal(t, true, addr["isDefault"])

	resp, _ = env.do(t, "DELETE", "/api/users/addresses/"+addr["id"].(string), tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, "DELETE", "/api/users/addresses/"+addr["id"].(string), tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
