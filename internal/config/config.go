// Package config loads server settings from flags and BILLZY_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mmynk/billzy/pkg/logging"
)

// EnvPrefix is prepended to flag names to form environment variables, e.g.
// BILLZY_SESSION_TTL.
const EnvPrefix = "BILLZY"

// Config holds the server settings.
type Config struct {
	Listen           string
	LogLevel         string
	SessionSecret    string
	SessionTTL       time.Duration
	MaxPeople        int
	ParseConcurrency int
	MetricsPath      string
	PurgeInterval    time.Duration
}

func newFlagSet(cfg *Config) *ff.FlagSet {
	fs := ff.NewFlagSet("billzy-server")
	fs.StringVar(&cfg.Listen, 0, "listen", ":8080", "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, 0, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.SessionSecret, 0, "session-secret", "", "HS256 key for session tokens (random when empty)")
	fs.DurationVar(&cfg.SessionTTL, 0, "session-ttl", 12*time.Hour, "How long sessions and their tokens live")
	fs.IntVar(&cfg.MaxPeople, 0, "max-people", 20, "Maximum people per session")
	fs.IntVar(&cfg.ParseConcurrency, 0, "parse-concurrency", 4, "Receipts parsed in parallel per request")
	fs.StringVar(&cfg.MetricsPath, 0, "metrics-path", "/metrics", "Prometheus metrics path (empty disables)")
	fs.DurationVar(&cfg.PurgeInterval, 0, "purge-interval", time.Minute, "How often expired sessions are purged")
	return fs
}

// Load parses args and the environment. On a parse or validation error the
// returned error includes the usage text.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := newFlagSet(cfg)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvPrefix)); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			return nil, fmt.Errorf("%s\n%w", ffhelp.Flags(fs), err)
		}
		return nil, fmt.Errorf("%s\nerror: %w", ffhelp.Flags(fs), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.MaxPeople < 1 {
		return fmt.Errorf("max people must be at least 1, got %d", c.MaxPeople)
	}
	if c.ParseConcurrency < 1 {
		return fmt.Errorf("parse concurrency must be at least 1, got %d", c.ParseConcurrency)
	}
	if c.PurgeInterval <= 0 {
		return fmt.Errorf("purge interval must be positive, got %s", c.PurgeInterval)
	}
	return nil
}
