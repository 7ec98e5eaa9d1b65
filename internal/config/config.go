package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment backed configuration shared by the TaskFlow
// binaries. Each binary reads only the fields it needs.
type Config struct {
	// HTTP Server (gateway)
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Broker
	NATSURL    string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	RPCTimeout time.Duration `env:"RPC_TIMEOUT" envDefault:"5s"`

	// Redis (cache + events)
	RedisURL string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Session tokens. Only the auth service signs and verifies, so the
	// secret is required there, not here.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// Mail (notification service)
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASSWORD"`
	MailFrom string `env:"MAIL_FROM" envDefault:"\"TaskFlow\" <no-reply@taskflow.com>"`

	// Observability / Logging
	ServiceName string `env:"SERVICE_NAME" envDefault:"taskflow"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RPCTimeout <= 0 {
		return nil, fmt.Errorf("RPC_TIMEOUT must be positive, got %s", cfg.RPCTimeout)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	return cfg, nil
}
