// Package config loads runtime configuration for the investdesk console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables.
//  4. Command-line flags.
//
// # Supported settings
//
//	flag  env                          json              default
//	-a    INVESTDESK_API_BASE_URL      base_url          http://localhost:3000/rest
//	-t    INVESTDESK_REQUEST_TIMEOUT   request_timeout   10s (flag in seconds)
//	-d    INVESTDESK_CREDENTIALS_DB    credentials_db    credentials.db
//	-l    INVESTDESK_LOG_LEVEL         log_level         warn
package config
