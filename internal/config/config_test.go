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

	assert.Equal(t, ":8082", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Asset Nexus", cfg.Webhook.Username)
	assert.Equal(t, uint(3), cfg.Webhook.MaxTries)
	assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Webhook.MaxRetryAfter)
	assert.Zero(t, cfg.Webhook.MaxElapsed)
	assert.Equal(t, "assetnexus.notifications", cfg.NATS.SubjectPrefix)
	assert.False(t, cfg.OTel.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("NOTIFY_ENABLED_CHANNELS", "webhook,nats")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.test/T000")
	t.Setenv("WEBHOOK_TIMEOUT", "750ms")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"webhook", "nats"}, cfg.EnabledChannels)
	assert.Equal(t, "https://hooks.slack.test/T000", cfg.Webhook.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.Webhook.Timeout)
	assert.InDelta(t, 0.25, cfg.OTel.SamplingRatio, 1e-9)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("sampling ratio", func(t *testing.T) {
		t.Setenv("OTEL_SAMPLING_RATIO", "1.5")
		_, err := Load()
		assert.ErrorContains(t, err, "OTEL_SAMPLING_RATIO")
	})

	t.Run("token hash not argon2id", func(t *testing.T) {
		t.Setenv("ADMIN_TOKEN_HASH", "abc")
		_, err := Load()
		assert.ErrorContains(t, err, "ADMIN_TOKEN_HASH")
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("WEBHOOK_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadChaosBlastRadiusBounds(t *testing.T) {
	t.Setenv("CHAOS_BLAST_RADIUS", "2")
	_, err := Load()
	assert.ErrorContains(t, err, "CHAOS_BLAST_RADIUS")
}
