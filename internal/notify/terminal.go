package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
)

// Terminal writes notifications to stderr with visual severity indicators
type Terminal struct {
	mu  sync.Mutex // Protects concurrent writes
	out io.Writer
}

// NewTerminal creates a terminal notifier writing to stderr
func NewTerminal() *Terminal {
	return &Terminal{out: os.Stderr}
}

// NewTerminalWithWriter creates a terminal notifier writing to w
func NewTerminalWithWriter(w io.Writer) *Terminal {
	return &Terminal{out: w}
}

// Notify writes the notification
func (t *Terminal) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := ""
	switch n.Severity {
	case SeverityCritical:
		prefix = "🚨 "
	case SeverityWarning:
		prefix = "⚠️  "
	default:
		prefix = "✅ "
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n%s[%s] %s\n", prefix, n.Severity, n.Title)
	if n.Job != "" {
		fmt.Fprintf(t.out, "   Job: %s\n", n.Job)
	}
	if n.Message != "" {
		fmt.Fprintf(t.out, "   %s\n", strings.ReplaceAll(n.Message, "\n", "\n   "))
	}

	keys := make([]string, 0, len(n.Context))
	for k := range n.Context {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(t.out, "   %s: %s\n", k, n.Context[k])
	}

	return nil
}

// Name returns "terminal"
func (t *Terminal) Name() string {
	return "terminal"
}
