package config

import (
	"fmt"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Loop modes.
const (
	ModeTick  = "tick"
	ModeEvent = "event"
)

// Config holds all application configuration.
type Config struct {
	Terminal  TerminalConfig
	Loop      LoopConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// TerminalConfig holds shell session configuration.
type TerminalConfig struct {
	Shell  string `envconfig:"CLARITTY_SHELL" default:"zsh"`
	Prompt string `envconfig:"CLARITTY_PROMPT" default:"$ "`
}

// LoopConfig holds driving loop configuration.
type LoopConfig struct {
	TickInterval       time.Duration `envconfig:"TICK_INTERVAL" default:"16ms"`
	Mode               string        `envconfig:"LOOP_MODE" default:"tick"`
	MetricsLogInterval time.Duration `envconfig:"METRICS_LOG_INTERVAL" default:"5s"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Enabled bool   `envconfig:"HTTP_ENABLED" default:"false"`
	Port    string `envconfig:"PORT" default:"7681"`
	Host    string `envconfig:"HOST" default:"127.0.0.1"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := Process()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Process reads environment variables without validating the result, so
// callers can apply overrides first and call Validate once.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Shell:  "zsh",
			Prompt: "$ ",
		},
		Loop: LoopConfig{
			TickInterval:       16 * time.Millisecond,
			Mode:               ModeTick,
			MetricsLogInterval: 5 * time.Second,
		},
		Server: ServerConfig{
			Enabled: false,
			Port:    "7681",
			Host:    "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Validate rejects values the loop cannot run with.
func (c *Config) Validate() error {
	if c.Terminal.Shell == "" {
		return fmt.Errorf("invalid config: shell must not be empty")
	}
	if c.Loop.TickInterval <= 0 {
		return fmt.Errorf("invalid config: tick interval %s must be positive", c.Loop.TickInterval)
	}
	if c.Loop.Mode != ModeTick && c.Loop.Mode != ModeEvent {
		return fmt.Errorf("invalid config: loop mode %q (want %q or %q)", c.Loop.Mode, ModeTick, ModeEvent)
	}
	if c.Loop.MetricsLogInterval < 0 {
		return fmt.Errorf("invalid config: metrics log interval %s is negative", c.Loop.MetricsLogInterval)
	}
	return nil
}
