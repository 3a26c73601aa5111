package tui

import (
	"bytes"
	"strings"
	"sync"
)

const (
	maxLogLineBytes = 2000
	logQueueSize    = 200
)

// LogLevel is the severity parsed from a log line.
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogWarn
	LogError
)

// LogMsg carries one log line into the dashboard.
type LogMsg struct {
	Line  string
	Level LogLevel
}

// LogEntry is a log line kept by the model.
type LogEntry struct {
	Line  string
	Level LogLevel
}

// LogWriter is an io.Writer for the poll logger while the dashboard owns
// the terminal. Complete lines are queued and forwarded to the program on a
// separate goroutine so a slow renderer never blocks the poller.
type LogWriter struct {
	program Sender

	mu      sync.Mutex
	partial bytes.Buffer
	queue   chan LogMsg
	closed  bool
	drained chan struct{}
}

// NewLogWriter starts forwarding lines to program.
func NewLogWriter(program Sender) *LogWriter {
	w := &LogWriter{
		program: program,
		queue:   make(chan LogMsg, logQueueSize),
		drained: make(chan struct{}),
	}
	go w.forward()
	return w
}

func (w *LogWriter) forward() {
	defer close(w.drained)
	for msg := range w.queue {
		if w.program != nil {
			w.program.Send(msg)
		}
	}
}

// Write buffers p and queues each complete line. Lines are dropped when the
// queue is full.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial.Write(p)
	for {
		line, err := w.partial.ReadString('\n')
		if err != nil {
			// No newline yet: put the fragment back for the next Write.
			w.partial.Reset()
			w.partial.WriteString(line)
			break
		}
		w.enqueue(line)
	}
	return len(p), nil
}

// Flush queues any buffered partial line.
func (w *LogWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.partial.Len() > 0 {
		w.enqueue(w.partial.String())
		w.partial.Reset()
	}
}

// Close flushes, then waits until every queued line has been handed to the
// program. Writes after Close are discarded.
func (w *LogWriter) Close() error {
	w.Flush()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	<-w.drained
	return nil
}

// enqueue must be called with mu held.
func (w *LogWriter) enqueue(line string) {
	if w.closed {
		return
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	if len(line) > maxLogLineBytes {
		line = line[:maxLogLineBytes] + "..."
	}
	select {
	case w.queue <- LogMsg{Line: line, Level: ParseLogLevel(line)}:
	default:
	}
}

// ParseLogLevel recognises the level in tint console output (WRN, ERR) and
// in slog JSON or text output (level=WARN, "level":"ERROR").
func ParseLogLevel(line string) LogLevel {
	switch {
	case containsAny(line, " ERR ", "level=ERROR", `"level":"ERROR"`):
		return LogError
	case containsAny(line, " WRN ", "level=WARN", `"level":"WARN"`):
		return LogWarn
	default:
		return LogInfo
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
