package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "test-secret", cfg.JWTSecret)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, "https://books.toscrape.com/", cfg.SourceBaseURL)
		assert.Equal(t, 2.0, cfg.ScrapeRPS)
		assert.Equal(t, 3, cfg.ScrapeRetries)
		assert.Equal(t, 4, cfg.IngestWorkers)
		assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("APP_ADDR", ":9999")
		t.Setenv("TOKEN_TTL", "30m")
		t.Setenv("INGEST_WORKERS", "8")
		t.Setenv("SCRAPE_RPS", "0.5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.Addr)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
		assert.Equal(t, 8, cfg.IngestWorkers)
		assert.Equal(t, 0.5, cfg.ScrapeRPS)
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("INGEST_WORKERS", "lots")
		t.Setenv("TOKEN_TTL", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.IngestWorkers)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
}
