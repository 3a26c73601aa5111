package events

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogConfig configures the logging handler
type LogConfig struct {
	// Writer is where logs are written (default: os.Stderr)
	Writer io.Writer

	// IncludePayload includes event payload in log output
	IncludePayload bool

	// TimeFormat is the timestamp format (default: RFC3339)
	TimeFormat string
}

// LogHandler returns a handler that writes one plain line per event.
// Format: time LVL [event.type] job status=S tick=#N, where LVL is WRN for
// failure events and INF otherwise. The wait dashboard's log pane reads it.
func LogHandler(cfg LogConfig) Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	return func(e Event) {
		var buf strings.Builder
		buf.WriteString(e.Time.Format(cfg.TimeFormat))
		if e.IsFailure() {
			buf.WriteString(" WRN ")
		} else {
			buf.WriteString(" INF ")
		}
		buf.WriteString(e.String())

		if cfg.IncludePayload && e.Payload != nil {
			fmt.Fprintf(&buf, " payload=%v", e.Payload)
		}
		if e.Error != "" {
			fmt.Fprintf(&buf, " error=%q", e.Error)
		}
		buf.WriteString("\n")

		fmt.Fprint(cfg.Writer, buf.String())
	}
}

// SlogHandler returns a handler that records events on a structured logger.
// Failure events and events carrying an error log at warn, everything else
// at debug.
func SlogHandler(logger *slog.Logger) Handler {
	return func(e Event) {
		attrs := []any{slog.String("event", string(e.Type))}
		if e.Job != "" {
			attrs = append(attrs, slog.String("job", e.Job))
		}
		if e.Status != "" {
			attrs = append(attrs, slog.String("status", e.Status))
		}
		if e.Tick != nil {
			attrs = append(attrs, slog.Int("tick", *e.Tick))
		}
		if e.Payload != nil {
			attrs = append(attrs, slog.Any("payload", e.Payload))
		}
		if e.Error != "" {
			attrs = append(attrs, slog.String("error", e.Error))
		}
		if e.IsFailure() || e.Error != "" {
			logger.Warn("poll event", attrs...)
			return
		}
		logger.Debug("poll event", attrs...)
	}
}
