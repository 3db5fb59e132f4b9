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

	assert.Equal(t, "call-triage-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 0.7, cfg.Triage.DefaultThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Webhook.DedupTTL())
	assert.Equal(t, 5*time.Second, cfg.SMS.SendTimeout())
	assert.Equal(t, 4, cfg.SMS.FanoutConcurrency)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9100")
	t.Setenv("TRIAGE_DEFAULT_THRESHOLD", "0.55")
	t.Setenv("WEBHOOK_DEDUP_TTL_MINUTES", "60")
	t.Setenv("SMS_TIMEOUT_SECONDS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9100", cfg.App.Addr())
	assert.Equal(t, 0.55, cfg.Triage.DefaultThreshold)
	assert.Equal(t, time.Hour, cfg.Webhook.DedupTTL())
	assert.Equal(t, 2*time.Second, cfg.SMS.SendTimeout())
}

func TestLoadRejectsThresholdOutOfRange(t *testing.T) {
	t.Setenv("TRIAGE_DEFAULT_THRESHOLD", "1.3")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("TRIAGE_DEFAULT_THRESHOLD", "not-a-number")
	_, err = Load()
	require.Error(t, err)
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNS", "many")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.True(t, cfg.Postgres.RunMigrations)
}
