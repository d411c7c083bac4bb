package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEventsAreLogged(t *testing.T) {
	env := newEnv(t)

	entries := captureAccessLogs(t, func() {
		_, _ = env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": seedUserEmail, "password": "nope-nope"})
	})
	e, ok := findAction(entries, "auth.login.fail")
	require.True(t, ok, "expected auth.login.fail")
	assert.Equal(t, "warn", e.Level)

	entries = captureAccessLogs(t, func() {
		env.userToken(t)
	})
	e, ok = findAction(entries, "auth.login.success")
	require.True(t, ok, "expected auth.login.success")
	assert.Equal(t, "audit", e.Level)
	assert.Equal(t, "u-asha", e.UserID)

	entries = captureAccessLogs(t, func() {
		env.adminToken(t)
	})
	e, ok = findAction(entries, "admin.login.success")
	require.True(t, ok, "expected admin.login.success")
	assert.Equal(t, "admin", e.Role)

	entries = captureAccessLogs(t, func() {
		_, _ = env.do(t, "POST", "/api/auth/reset-password", "", map[string]string{
			"email": seedUserEmail, "otp": "999999", "newPassword": "another1",
		})
	})
	_, ok = findAction(entries, "auth.reset.fail")
	assert.True(t, ok, "expected auth.reset.fail")
}

func TestPasswordsNeverLogged(t *testing.T) {
	env := newEnv(t)
	entries := captureAccessLogs(t, func() {
		_, _ = env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": seedUserEmail, "password": "Hunter22-secret"})
		_, _ = env.do(t, "POST", "/api/auth/register", "", map[string]string{"name": "Z", "email": "z@example.com", "password": "Hunter22-secret"})
	})
	require.NotEmpty(t, entries)
	for _, e := range entries {
		for _, v := range e.Fields {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "Hunter22")
			}
		}
	}
}
