// Package logging configures the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init installs a text or JSON handler on stderr as the default logger and
// returns it. Unknown levels fall back to info.
func Init(level, format string) *slog.Logger {
	return InitWriter(os.Stderr, level, format)
}

func InitWriter(w io.Writer, level, format string) *slog.Logger {
	logger := New(w, level, format)
	slog.SetDefault(logger)

	logger.With("component", "logging").Debug("Logger initialized",
		"level", level,
		"format", format,
	)
	return logger
}

// New builds a logger without touching the default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything, for tests and quiet runs.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
