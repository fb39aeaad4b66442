// Package logging configures colored structured logging with tint.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a colored slog logger writing to stderr at the given level.
func New(level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// Setup makes the tint logger the process default.
func Setup(level slog.Level) *slog.Logger {
	logger := New(level)
	slog.SetDefault(logger)
	return logger
}
