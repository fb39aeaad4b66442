// Package config loads server configuration from the environment.
// A .env file is honored for local development; real deployments set the
// variables directly.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the server needs at startup.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DBPath is the SQLite database path. ":memory:" for ephemeral runs.
	DBPath string

	// LogLevel is the minimum slog level: debug, info, warn, error.
	LogLevel slog.Level
}

// Load reads PAYPLAY_* variables, after merging in a .env file if one
// exists. Missing variables fall back to development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:     getEnv("PAYPLAY_ADDR", ":8080"),
		DBPath:   getEnv("PAYPLAY_DB", "payplay.db"),
		LogLevel: parseLevel(getEnv("PAYPLAY_LOG_LEVEL", "info")),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid PAYPLAY_ADDR %q: %w", c.Addr, err)
	}
	if c.DBPath == "" {
		return fmt.Errorf("PAYPLAY_DB must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
