package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRateLimit(t *testing.T) {
	env := newEnv(t, withAuthRate(3))
	bad := map[string]string{"email": seedUserEmail, "password": "wrong-password"}

	entries := captureAccessLogs(t, func() {
		for i := 0; i < 4; i++ {
			resp, body := env.do(t, "POST", "/api/auth/login", "", bad)
			if i < 3 {
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i)
				continue
			}
			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
			assert.Contains(t, body["message"], "Too many attempts")
		}
	})
	_, ok := findAction(entries, "rate.auth.hit")
	assert.True(t, ok, "expected rate.auth.hit log")

	// catalogue reads are not throttled by the auth limiter
	resp, _ := env.do(t, "GET", "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBodySizeLimit(t *testing.T) {
	env := newEnv(t)
	big := bytes.Repeat([]byte("a"), 2<<20)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.App.Test(req, -1)
	if err != nil {
		// fasthttp may reset the connection instead of answering
		return
	}
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
