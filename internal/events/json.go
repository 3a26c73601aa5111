package events

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// JSONEvent is the wire format for events streamed with --events.
type JSONEvent struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Job       string         `json:"job,omitempty"`
	Status    string         `json:"status,omitempty"`
	Tick      *int           `json:"tick,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// JSONEmitter writes events as JSON lines to a writer.
// Thread-safe for concurrent Emit calls.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONEmitter creates a new JSON emitter that writes to w.
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

// Emit converts the Event to wire format and writes it as one line.
func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(ToJSONEvent(event)); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return nil
}

// JSONEmitterHandler returns a Handler that emits events as JSON lines.
// Errors are logged but not propagated (handler interface has no return).
func JSONEmitterHandler(emitter *JSONEmitter, logger *slog.Logger) Handler {
	return func(e Event) {
		if err := emitter.Emit(e); err != nil {
			logger.Warn("failed to emit JSON event", slog.Any("error", err))
		}
	}
}

// ToJSONEvent converts an internal Event to the wire format JSONEvent.
func ToJSONEvent(e Event) JSONEvent {
	je := JSONEvent{
		Type:      string(e.Type),
		Timestamp: e.Time,
		Job:       e.Job,
		Status:    e.Status,
		Tick:      e.Tick,
		Error:     e.Error,
	}

	if e.Payload != nil {
		switch p := e.Payload.(type) {
		case map[string]any:
			je.Payload = p
		default:
			je.Payload = map[string]any{"value": e.Payload}
		}
	}

	return je
}
