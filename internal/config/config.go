// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"assetnexus"`
	HTTPAddr    string `env:"HTTP_ADDR" env-default:":8082"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	// DatabaseURL is optional. Without it settings and movements live in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	EnabledChannels []string `env:"NOTIFY_ENABLED_CHANNELS" env-separator:","`

	Webhook WebhookConfig
	NATS    NATSConfig
	Admin   AdminConfig
	OTel    OTelConfig
	Chaos   ChaosConfig
}

type WebhookConfig struct {
	URL           string        `env:"SLACK_WEBHOOK_URL"`
	Username      string        `env:"SLACK_USERNAME" env-default:"Asset Nexus"`
	Channel       string        `env:"SLACK_CHANNEL"`
	IconEmoji     string        `env:"SLACK_ICON_EMOJI"`
	SigningKey    string        `env:"WEBHOOK_SIGNING_KEY"`
	Rate          float64       `env:"WEBHOOK_RATE" env-default:"1"`
	Burst         int           `env:"WEBHOOK_BURST" env-default:"1"`
	MaxTries      uint          `env:"WEBHOOK_MAX_TRIES" env-default:"3"`
	Timeout       time.Duration `env:"WEBHOOK_TIMEOUT" env-default:"5s"`
	MaxRetryAfter time.Duration `env:"WEBHOOK_MAX_RETRY_AFTER" env-default:"2s"`
	// MaxElapsed bounds one delivery across retries; zero derives it from the
	// other limits.
	MaxElapsed time.Duration `env:"WEBHOOK_MAX_ELAPSED"`
}

type NATSConfig struct {
	URL           string `env:"NATS_URL"`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" env-default:"assetnexus.notifications"`
}

// AdminConfig holds the encoded argon2id hash of the bearer token that guards
// the settings API, as printed by `assetnexus hash-token`. An empty hash
// leaves the API open.
type AdminConfig struct {
	TokenHash string `env:"ADMIN_TOKEN_HASH"`
}

type OTelConfig struct {
	Enabled       bool    `env:"OTEL_ENABLED" env-default:"false"`
	Endpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4318"`
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" env-default:"1"`
}

// ChaosConfig injects faults into every notification channel. Leave it
// zeroed outside of resilience testing.
type ChaosConfig struct {
	BlastRadius float64       `env:"CHAOS_BLAST_RADIUS" env-default:"0"`
	Latency     time.Duration `env:"CHAOS_LATENCY" env-default:"0s"`
	Fail        bool          `env:"CHAOS_FAIL" env-default:"false"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.OTel.SamplingRatio < 0 || c.OTel.SamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be within [0, 1], got %v", c.OTel.SamplingRatio)
	}
	if c.Chaos.BlastRadius < 0 || c.Chaos.BlastRadius > 1 {
		return fmt.Errorf("CHAOS_BLAST_RADIUS must be within [0, 1], got %v", c.Chaos.BlastRadius)
	}
	if c.Admin.TokenHash != "" && !strings.HasPrefix(c.Admin.TokenHash, "$argon2id$") {
		return fmt.Errorf("ADMIN_TOKEN_HASH must be an argon2id hash from `assetnexus hash-token`")
	}
	return nil
}
