package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "kicks/internal/log"
)

func capture(t *testing.T, fn func()) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldF := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldF)
	}()
	fn()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestWriteWithoutContext(t *testing.T) {
	lines := capture(t, func() {
		applog.Error(nil, "mail.send", errors.New("dial tcp: refused"), map[string]any{"to": "a@b.c"})
	})
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "mail.send", lines[0]["action"])
	assert.Equal(t, "dial tcp: refused", lines[0]["err"])
	assert.NotContains(t, lines[0], "path")
}

func TestWriteCarriesRequestAndSubject(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals(applog.LocalSubject, "u-1")
		c.Locals(applog.LocalRole, "user")
		applog.Security(c, "access.denied", nil)
		return c.SendStatus(fiber.StatusForbidden)
	})

	lines := capture(t, func() {
		_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
		require.NoError(t, err)
	})
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "rid-1", lines[0]["req_id"])
	assert.Equal(t, "u-1", lines[0]["user_id"])
	assert.Equal(t, "/x", lines[0]["path"])
}
