package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ID_TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Equal(t, time.Hour, cfg.IDTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.AllowedHost)
	assert.False(t, cfg.IsProduction())
}

func TestLoadProductionHost(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HOST", "https://api.soloura.app:443/v1")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.soloura.app", cfg.AllowedHost)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("ID_TOKEN_TTL", "soon")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soloura.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
timezone: Europe/Berlin
store_backend: MEMORY
allowed_origins:
  - https://soloura.app
id_token_ttl: 15m
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"https://soloura.app"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.IDTokenTTL)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreBackend: "sqlite", IDTokenTTL: time.Hour, Timezone: "UTC"}
	assert.Error(t, cfg.Validate())

	cfg.StoreBackend = StoreMemory
	assert.NoError(t, cfg.Validate())

	cfg.Environment = "production"
	cfg.JWTSecret = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "s3cret"
	cfg.GeminiAPIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}
