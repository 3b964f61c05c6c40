// Package config provides 12-factor configuration management for claritty.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Terminal: shell and prompt for the session
//   - Loop: tick interval, tick or event mode, metrics log cadence
//   - Server: optional inspection API (enabled, host, port)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting for the inspection API
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Inspection API on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - CLARITTY_SHELL, CLARITTY_PROMPT
//   - TICK_INTERVAL, LOOP_MODE, METRICS_LOG_INTERVAL
//   - HTTP_ENABLED, PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
