package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence while launching or polling jobs
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Job is the remote job ID this event relates to (empty for session events)
	Job string `json:"job,omitempty"`

	// Status is the last observed remote status label, if any
	Status string `json:"status,omitempty"`

	// Tick is the poll tick number (nil outside a poll session)
	Tick *int `json:"tick,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Poll session events
const (
	// PollStarted payload: job_count (int)
	PollStarted EventType = "poll.started"
	// PollTick is emitted before each fetch sweep; payload: pending (int)
	PollTick EventType = "poll.tick"
	// PollFinalSweep is emitted when the deadline passes with jobs pending
	PollFinalSweep EventType = "poll.final_sweep"
	// PollCompleted payload: resolved (int), unresolved (int)
	PollCompleted EventType = "poll.completed"
)

// Per-job poll events
const (
	JobObserved    EventType = "job.observed"
	JobResolved    EventType = "job.resolved"
	JobFetchFailed EventType = "job.fetch_failed"
	JobUnresolved  EventType = "job.unresolved"
)

// Webhook receiver events
const (
	WebhookReceived EventType = "webhook.received"
	WebhookRejected EventType = "webhook.rejected"
)

// NewEvent creates an event with the given type and job
func NewEvent(eventType EventType, job string) Event {
	return Event{
		Type: eventType,
		Job:  job,
	}
}

// WithStatus returns a copy of the event with the status label set
func (e Event) WithStatus(status string) Event {
	e.Status = status
	return e
}

// WithTick returns a copy of the event with the tick number set
func (e Event) WithTick(tick int) Event {
	e.Tick = &tick
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), "_failed") || strings.HasSuffix(string(e.Type), ".rejected")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Job != "" {
		parts = append(parts, e.Job)
	}
	if e.Status != "" {
		parts = append(parts, "status="+e.Status)
	}
	if e.Tick != nil {
		parts = append(parts, fmt.Sprintf("tick=#%d", *e.Tick))
	}

	return strings.Join(parts, " ")
}
