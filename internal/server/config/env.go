package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type serverEnv struct {
	EndpointAddr                 string        `env:"INVESTDESK_ADDR"`
	BasePath                     string        `env:"INVESTDESK_BASE_PATH"`
	DatabaseDSN                  string        `env:"INVESTDESK_DATABASE_DSN"`
	SecretKey                    string        `env:"INVESTDESK_SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"INVESTDESK_ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"INVESTDESK_REFRESH_TOKEN_TTL"`
	VerificationCodeTTL          time.Duration `env:"INVESTDESK_VERIFICATION_CODE_TTL"`
	LogLevel                     string        `env:"INVESTDESK_LOG_LEVEL"`
	DemoMode                     *bool         `env:"INVESTDESK_DEMO_MODE"`
}

func parseEnv(cfg *Config, environ map[string]string) error {
	var raw serverEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&cfg.EndpointAddr, raw.EndpointAddr)
	setString(&cfg.BasePath, raw.BasePath)
	setString(&cfg.DatabaseDSN, raw.DatabaseDSN)
	setString(&cfg.SecretKey, raw.SecretKey)
	setString(&cfg.LogLevel, raw.LogLevel)
	if raw.DemoMode != nil {
		cfg.DemoMode = *raw.DemoMode
	}
	if raw.AccessTokenValidityDuration > 0 {
		cfg.AccessTokenValidityDuration = raw.AccessTokenValidityDuration
	}
	if raw.RefreshTokenValidityDuration > 0 {
		cfg.RefreshTokenValidityDuration = raw.RefreshTokenValidityDuration
	}
	if raw.VerificationCodeTTL > 0 {
		cfg.VerificationCodeTTL = raw.VerificationCodeTTL
	}
	return nil
}
