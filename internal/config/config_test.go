package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "LUSTBOT_BACKEND_URL", "LUSTBOT_BACKEND_TIMEOUT", "PORT",
		"LUSTBOT_IDENTITY_STORE", "LUSTBOT_IDENTITY_FILE", "LUSTBOT_LEAD_DELAY")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/lustbot", cfg.Backend.URL)
	assert.Zero(t, cfg.Backend.Timeout)
	assert.Equal(t, IdentityFile, cfg.Identity.Store)
	assert.NotEmpty(t, cfg.Identity.File)
	assert.Equal(t, time.Second, cfg.Lead.Delay)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LUSTBOT_BACKEND_URL", "https://bot.example/lustbot")
	t.Setenv("LUSTBOT_BACKEND_TIMEOUT", "15s")
	t.Setenv("LUSTBOT_OAUTH_SCOPES", "chat, leads")
	t.Setenv("LUSTBOT_IDENTITY_STORE", "Memory")
	t.Setenv("LUSTBOT_LEAD_DELAY", "250ms")
	t.Setenv("PORT", "127.0.0.1:9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example/lustbot", cfg.Backend.URL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Len(t, cfg.Backend.OAuthScopes, 2)
	assert.Equal(t, IdentityMemory, cfg.Identity.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.Lead.Delay)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LUSTBOT_IDENTITY_STORE", "redis")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LUSTBOT_IDENTITY_STORE", "database")
	unsetEnv(t, "DB_URL")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("LUSTBOT_IDENTITY_STORE", "memory")
	t.Setenv("PORT", "80 80")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PORT", "8080")
	t.Setenv("LUSTBOT_LEAD_DELAY", "soon")
	_, err = Load()
	assert.Error(t, err)
}
