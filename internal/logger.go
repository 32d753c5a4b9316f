package internal

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel maps LOG_LEVEL to a slog level. Unknown values fall back to info.
func ParseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger returns a text logger in development and a JSON logger
// everywhere else. Every record carries service=mindpilot.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}

	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("service", "mindpilot")
}
