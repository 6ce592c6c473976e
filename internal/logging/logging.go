// Package logging provides the shared structured logger. The level is read
// from PAGEFLOW_LOG_LEVEL (debug, info, warn, error) and defaults to info.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvLevel names the environment variable holding the log level
const EnvLevel = "PAGEFLOW_LOG_LEVEL"

var (
	initLogger sync.Once
	baseLogger *slog.Logger
	level      slog.LevelVar
)

func base() *slog.Logger {
	initLogger.Do(func() {
		level.Set(parseLevel(os.Getenv(EnvLevel)))
		baseLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
	})
	return baseLogger
}

// New returns a logger tagged with component
func New(component string) *slog.Logger {
	l := base()
	if component == "" {
		return l
	}
	return l.With("component", component)
}

// SetDebug raises the shared level to debug, or restores the configured level
func SetDebug(on bool) {
	base()
	if on {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(parseLevel(os.Getenv(EnvLevel)))
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
