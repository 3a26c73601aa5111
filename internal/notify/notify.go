// Package notify delivers completion notices for remote jobs to the
// terminal, chat, HTTP endpoints and message brokers.
package notify

import "context"

// Severity indicates how much attention a notification needs
type Severity string

const (
	SeverityInfo     Severity = "info"     // everything finished
	SeverityWarning  Severity = "warning"  // stopped or still pending
	SeverityCritical Severity = "critical" // at least one job failed
)

// Notification describes an outcome worth telling the user about
type Notification struct {
	Severity Severity          // How urgent is this?
	Job      string            // Job ID, or empty for a multi-job summary
	Title    string            // Short summary (one line)
	Message  string            // Detailed explanation
	Context  map[string]string // PR URLs, repositories, counts
}

// Notifier delivers notifications to one destination
type Notifier interface {
	// Notify sends n. Implementations should respect context cancellation.
	Notify(ctx context.Context, n Notification) error

	// Name returns the backend type for logging
	Name() string
}
