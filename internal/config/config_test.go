package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://flowtrack.db")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite://flowtrack.db", cfg.DatabaseURL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 800*time.Millisecond, cfg.WorkerPoll)
	assert.Equal(t, "flowtrack.events", cfg.RedisChannel)
	assert.True(t, cfg.WorkerEnabled)
	assert.False(t, cfg.AuthEnabled)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadParsesOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://flowtrack.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresSecretWhenAuthEnabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://flowtrack.db")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://flowtrack.db")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}
