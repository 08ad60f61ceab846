package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/investdesk/internal/flagx"
	"github.com/dmitrijs2005/investdesk/internal/timex"
)

// JSONConfig is the on-disk shape. Durations accept "15m" strings or
// integer nanoseconds.
type JSONConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	BasePath                     string         `json:"base_path"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	VerificationCodeTTL          timex.Duration `json:"verification_code_ttl"`
	LogLevel                     string         `json:"log_level"`
	DemoMode                     bool           `json:"demo_mode"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JSONConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.EndpointAddr, c.EndpointAddr)
	setString(&cfg.BasePath, c.BasePath)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.LogLevel, c.LogLevel)
	cfg.DemoMode = cfg.DemoMode || c.DemoMode
	if c.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.VerificationCodeTTL.Duration > 0 {
		cfg.VerificationCodeTTL = c.VerificationCodeTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
