package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger = New("info", "text", os.Stderr)

// New builds a slog logger. format "json" selects the JSON handler,
// anything else the text handler. Unknown levels fall back to info.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Setup replaces the process logger and returns it.
func Setup(level, format string) *slog.Logger {
	return Set(New(level, format, os.Stderr))
}

// Set installs l as the process logger and returns it.
func Set(l *slog.Logger) *slog.Logger {
	defaultLogger = l
	slog.SetDefault(l)
	return l
}

// L returns the process logger.
func L() *slog.Logger { return defaultLogger }
