package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/flagx"
)

// parseFlags populates Config from the flags it owns:
//
//	-a string   bind address (e.g. ":3000")
//	-b string   base path of the API (e.g. "/rest")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-l string   log level
//	-demo       seed the demo account and use fixed verification codes
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-b", "-d", "-s", "-t", "-r", "-l", "-demo"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to run server")
	fs.StringVar(&cfg.BasePath, "b", cfg.BasePath, "API base path")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.DemoMode, "demo", cfg.DemoMode, "demo mode")

	accessTTL := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTTL := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *accessTTL <= 0 || *refreshTTL <= 0 {
		return fmt.Errorf("parse flags: token validity must be positive")
	}

	cfg.AccessTokenValidityDuration = time.Duration(*accessTTL) * time.Minute
	cfg.RefreshTokenValidityDuration = time.Duration(*refreshTTL) * time.Minute
	return nil
}
