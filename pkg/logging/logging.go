// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Configure(logging.Options{Level: logging.ParseLevel(os.Getenv("LOG_LEVEL"))})
//	logging.Configure(logging.Options{Format: logging.FormatJSON}) // machine-readable output
//
// Levels: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects the handler. Zero values mean colored text at INFO on stderr.
type Options struct {
	Level  slog.Level
	Format string
	Output io.Writer
}

// Configure installs a default logger built from opts.
func Configure(opts Options) {
	slog.SetDefault(New(opts))
}

// New builds a logger without installing it.
func New(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	if strings.EqualFold(opts.Format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: opts.Level,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}))
}

// ParseLevel maps debug, warn and error to their levels; anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
