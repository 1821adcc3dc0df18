package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/openhouse-api/internal/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("LISTING_TIMEZONE", "")

	cfg := Load()
	assert.Equal(t, 4002, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "America/New_York", cfg.ListingTimezone)
	assert.Equal(t, time.Hour, cfg.GeocodeNegativeTTL)
	assert.Equal(t, "@every 15m", cfg.RefreshSchedule)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GEOCODE_CONCURRENCY", "2")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2, cfg.GeocodeConcurrency)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{ListingTimezone: "Nowhere/Special"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestDotEnvAppliesLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nSESSION_IDLE_TIMEOUT=5m\n"), 0o600))
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SESSION_IDLE_TIMEOUT", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	require.NoError(t, os.Unsetenv("SESSION_IDLE_TIMEOUT"))
	t.Cleanup(func() { logger.Log.SetLevel(logrus.InfoLevel) })

	require.NoError(t, LoadDotEnv(path))
	logger.Init(AppName)

	assert.Equal(t, logrus.DebugLevel, logger.Log.GetLevel())
	assert.Equal(t, 5*time.Minute, Load().SessionIdleTimeout)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
