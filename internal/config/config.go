// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
)

// Environment variable names
const (
	EnvAddr           = "ACTA_ADDR"
	EnvFetchTimeout   = "ACTA_FETCH_TIMEOUT"
	EnvUserAgent      = "ACTA_USER_AGENT"
	EnvLogLevel       = "ACTA_LOG_LEVEL"
	EnvAllowedOrigins = "ACTA_ALLOWED_ORIGINS"
	EnvDataDir        = "ACTA_DATA_DIR"
)

const (
	DefaultAddr    = ":8080"
	DefaultDataDir = "~/.acta-lineup"
)

// Config holds runtime settings shared by the CLI and the HTTP server
type Config struct {
	Addr           string
	FetchTimeout   time.Duration
	UserAgent      string
	LogLevel       logger.Level
	AllowedOrigins []string
	DataDir        string
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Addr:           DefaultAddr,
		FetchTimeout:   scraper.DefaultTimeout,
		UserAgent:      scraper.UserAgent,
		LogLevel:       logger.LevelInfo,
		AllowedOrigins: []string{"*"},
		DataDir:        DefaultDataDir,
	}
}

// Load reads the given .env files (".env" when none are given) and then the
// environment. Missing .env files are ignored; variables already set in the
// environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, falling back to Default
// for unset values.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}

	if v := getenv(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvFetchTimeout, v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: must be positive", EnvFetchTimeout, v)
		}
		cfg.FetchTimeout = d
	}

	if v := getenv(EnvLogLevel); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if v := getenv(EnvAllowedOrigins); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
