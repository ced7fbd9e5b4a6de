// Package config loads runtime configuration from the environment with
// sensible defaults, so the binary runs with no flags in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration of the service.
type Config struct {
	// HTTP listen address, host:port.
	Addr string

	// Ensembl REST endpoint and request pacing.
	EnsemblBaseURL  string
	EnsemblInterval time.Duration
	EnsemblCacheCap int

	// NCBI BLAST endpoint and polling.
	BlastBaseURL      string
	BlastPollInterval time.Duration
	BlastPollTimeout  time.Duration

	// Log level: debug, info, warn, error.
	LogLevel string
}

// Defaults mirror the public endpoints and the pacing they tolerate.
const (
	DefaultAddr            = ":8000"
	DefaultEnsemblBaseURL  = "https://rest.ensembl.org"
	DefaultEnsemblInterval = 70 * time.Millisecond
	DefaultEnsemblCacheCap = 256
	DefaultBlastBaseURL    = "https://blast.ncbi.nlm.nih.gov/Blast.cgi"
	DefaultBlastPoll       = 10 * time.Second
	DefaultBlastTimeout    = 180 * time.Second
	DefaultLogLevel        = "info"
)

// FromEnv builds a Config from PRIMEROOL_* environment variables, falling
// back to the defaults for anything unset.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:              envOr("PRIMEROOL_ADDR", DefaultAddr),
		EnsemblBaseURL:    envOr("PRIMEROOL_ENSEMBL_URL", DefaultEnsemblBaseURL),
		EnsemblInterval:   DefaultEnsemblInterval,
		EnsemblCacheCap:   DefaultEnsemblCacheCap,
		BlastBaseURL:      envOr("PRIMEROOL_BLAST_URL", DefaultBlastBaseURL),
		BlastPollInterval: DefaultBlastPoll,
		BlastPollTimeout:  DefaultBlastTimeout,
		LogLevel:          envOr("PRIMEROOL_LOG_LEVEL", DefaultLogLevel),
	}

	var err error
	if cfg.EnsemblInterval, err = envDuration("PRIMEROOL_ENSEMBL_INTERVAL", cfg.EnsemblInterval); err != nil {
		return Config{}, err
	}
	if cfg.EnsemblCacheCap, err = envInt("PRIMEROOL_ENSEMBL_CACHE", cfg.EnsemblCacheCap); err != nil {
		return Config{}, err
	}
	if cfg.BlastPollInterval, err = envDuration("PRIMEROOL_BLAST_POLL", cfg.BlastPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.BlastPollTimeout, err = envDuration("PRIMEROOL_BLAST_TIMEOUT", cfg.BlastPollTimeout); err != nil {
		return Config{}, err
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid PRIMEROOL_LOG_LEVEL %q", cfg.LogLevel)
	}
	if cfg.EnsemblCacheCap <= 0 {
		return Config{}, fmt.Errorf("PRIMEROOL_ENSEMBL_CACHE must be positive")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
