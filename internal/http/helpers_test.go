package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"kicks/internal/config"
	"kicks/internal/http/handlers"
	"kicks/internal/mailer"
	"kicks/internal/repos"
	"kicks/internal/storage"
)

const (
	seedUserEmail  = "asha@kicks.test"
	seedAdminEmail = "owner@kicks.test"
	seedPassword   = "Passw0rd!"
	testOTP        = "123456"
)

type testEnv struct {
	App  *fiber.App
	DB   *sqlx.DB
	Deps *handlers.Deps
	Mail *mailer.Mock
}

type envOption func(*config.Config, *handlers.Deps)

// Options run twice: before NewDeps with a nil Deps, then after it.
func withAuthRate(n int) envOption {
	return func(_ *config.Config, d *handlers.Deps) {
		if d != nil {
			d.AuthRateMax = n
		}
	}
}

func withStrictOrders() envOption {
	return func(c *config.Config, _ *handlers.Deps) { c.StrictOrderTransitions = true }
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)

	mock := &mailer.Mock{}
	notifier, err := mailer.NewNotifier(mock, "no-reply@kicks.test", "Kicks Don't Stink")
	require.NoError(t, err)

	cfg := config.Config{
		JWTSecret:             "test-secret",
		TokenTTL:              time.Hour,
		AdminVerificationCode: "ADMIN-2024",
		OwnerVerificationCode: "OWNER-2024",
	}
	for _, o := range opts {
		o(&cfg, nil)
	}
	uploadDir := t.TempDir()
	deps := handlers.NewDeps(db, cfg, storage.NewLocal(uploadDir, "/uploads"), notifier)
	deps.UploadDir = uploadDir
	deps.Auth.NewCode = func() (string, error) { return testOTP, nil }
	for _, o := range opts {
		o(&cfg, deps)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())
	deps.Mount(app)
	return &testEnv{App: app, DB: db, Deps: deps, Mail: mock}
}

// do sends a JSON request; body may be nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func (e *testEnv) userToken(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, "POST", "/api/auth/login", "", map[string]string{"email": seedUserEmail, "password": seedPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, "POST", "/api/admin/auth/login", "", map[string]string{"email": seedAdminEmail, "password": seedPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body["token"].(string)
}

type accessLogEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Role   string         `json:"role"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureAccessLogs(t *testing.T, fn func()) []accessLogEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []accessLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e accessLogEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []accessLogEntry, action string) (accessLogEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return accessLogEntry{}, false
}
