package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/investdesk/internal/flagx"
	"github.com/dmitrijs2005/investdesk/internal/timex"
)

// JSONConfig is the on-disk shape. Durations are "10s" strings or integer
// nanoseconds.
type JSONConfig struct {
	BaseURL        string         `json:"base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	CredentialsDSN string         `json:"credentials_db"`
	LogLevel       string         `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any. Fields
// missing from the file keep their current values.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CredentialsDSN != "" {
		cfg.CredentialsDSN = jc.CredentialsDSN
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
