package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the investdesk console client.
type Config struct {
	// BaseURL is the identity service root, e.g. http://localhost:3000/rest.
	BaseURL        string
	RequestTimeout time.Duration
	// CredentialsDSN is the SQLite file holding the token pair.
	CredentialsDSN string
	LogLevel       string
}

func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:3000/rest"
	c.RequestTimeout = 10 * time.Second
	c.CredentialsDSN = "credentials.db"
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, environment variables and
// command-line flags. Later sources win.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], nil)
}

// load takes explicit args and environment (nil means the process
// environment).
func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
