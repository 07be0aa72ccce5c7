package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 20, cfg.Limit.IPLimit)
	assert.Equal(t, 5*time.Minute, cfg.Limit.IPWindow)
	assert.Equal(t, 5, cfg.Limit.UserLimit)
	assert.Equal(t, 15*time.Minute, cfg.Limit.UserWindow)
	assert.Equal(t, 24*time.Hour, cfg.Limit.BlockDuration)
	assert.Equal(t, "admin_token", cfg.Auth.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Comment.Limit)
	assert.Equal(t, 10*time.Minute, cfg.Comment.Window)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ATELIER_ADDR", ":9999")
	t.Setenv("AUTH_IP_LIMIT", "3")
	t.Setenv("AUTH_IP_WINDOW", "30s")
	t.Setenv("AUTH_BLOCK_DURATION", "0s")
	t.Setenv("SESSION_COOKIE_NAME", "session")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3, cfg.Limit.IPLimit)
	assert.Equal(t, 30*time.Second, cfg.Limit.IPWindow)
	assert.Zero(t, cfg.Limit.BlockDuration, "zero duration means permanent blocks")
	assert.Equal(t, "session", cfg.Auth.CookieName)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("AUTH_IP_LIMIT", "lots")
	t.Setenv("AUTH_USER_WINDOW", "soon")

	cfg := FromEnv()

	assert.Equal(t, 20, cfg.Limit.IPLimit)
	assert.Equal(t, 15*time.Minute, cfg.Limit.UserWindow)
}
