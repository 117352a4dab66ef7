package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bugtracker-api", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.Equal(t, 60*24, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)

	assert.Equal(t, time.Hour, cfg.Sweep.Interval())
	assert.Equal(t, 24*time.Hour, cfg.Sweep.ResolveAfter())
	assert.Equal(t, 48*time.Hour, cfg.Sweep.CloseAfter())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("SWEEP_INTERVAL_MINUTES", "5")
	t.Setenv("SWEEP_RESOLVE_AFTER_MINUTES", "10")
	t.Setenv("SWEEP_CLOSE_AFTER_MINUTES", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.App.Addr())
	assert.Equal(t, 5*time.Minute, cfg.Sweep.Interval())
	assert.Equal(t, 10*time.Minute, cfg.Sweep.ResolveAfter())
	assert.Equal(t, 20*time.Minute, cfg.Sweep.CloseAfter())
}

func TestSweepConfigFallsBackOnNonPositiveValues(t *testing.T) {
	sweep := SweepConfig{}
	assert.Equal(t, time.Hour, sweep.Interval())
	assert.Equal(t, 24*time.Hour, sweep.ResolveAfter())
	assert.Equal(t, 48*time.Hour, sweep.CloseAfter())
}

func TestInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
