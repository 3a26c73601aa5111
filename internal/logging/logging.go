// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Config holds logger configuration
type Config struct {
	Level        string // debug, info, warn, error
	Format       string // console, json
	EnableSource bool   // Enable source code location
	TimeFormat   string // Time format for console output

	// NoColor disables ANSI colours in console output. New also disables
	// them when the writer is not a terminal.
	NoColor bool
}

// New creates a logger writing to w. Logs go to stderr in the CLI so that
// stdout carries only command results.
func New(cfg Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Level)

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.EnableSource,
		})
	default:
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.TimeOnly
		}
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  cfg.EnableSource,
			TimeFormat: timeFormat,
			NoColor:    cfg.NoColor || !isTerminal(w),
		})
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
