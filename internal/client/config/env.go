package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type clientEnv struct {
	BaseURL        string        `env:"INVESTDESK_API_BASE_URL"`
	RequestTimeout time.Duration `env:"INVESTDESK_REQUEST_TIMEOUT"`
	CredentialsDSN string        `env:"INVESTDESK_CREDENTIALS_DB"`
	LogLevel       string        `env:"INVESTDESK_LOG_LEVEL"`
}

func parseEnv(cfg *Config, environ map[string]string) error {
	var raw clientEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if raw.BaseURL != "" {
		cfg.BaseURL = raw.BaseURL
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = raw.RequestTimeout
	}
	if raw.CredentialsDSN != "" {
		cfg.CredentialsDSN = raw.CredentialsDSN
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	return nil
}
