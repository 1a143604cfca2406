package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseCast/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/pulsecast")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.WorkerCount)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 10*time.Second, cfg.SendTimeout)
	assert.Equal(t, "telegram", cfg.Transport)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	// t.Setenv registers the restore; the variable must be absent, not empty.
	t.Setenv("DATABASE_URL", "placeholder")
	os.Unsetenv("DATABASE_URL")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/pulsecast")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("TRANSPORT", "email")
	t.Setenv("SCHEDULER_INTERVAL", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, "email", cfg.Transport)
	assert.Equal(t, 5*time.Second, cfg.SchedulerInterval)
}
