package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kicks/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "")
	cfg := config.Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.StrictOrderTransitions)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("SMTP_TLS_MODE", "STARTTLS")
	cfg := config.Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.StrictOrderTransitions)
	assert.Equal(t, "starttls", cfg.SMTP.TLSMode)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "maybe")
	cfg := config.Load()
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.StrictOrderTransitions)
}
