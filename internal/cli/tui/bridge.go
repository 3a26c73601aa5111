package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/swarm/internal/events"
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects the event bus to the bubbletea program
type Bridge struct {
	program Sender
}

// NewBridge creates a new bridge for the given program
func NewBridge(program Sender) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler function for the event bus
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		msg := EventToMsg(evt)
		if msg != nil {
			b.program.Send(msg)
		}
	}
}

// EventToMsg converts an events.Event to a tea.Msg, or nil for events the
// dashboard does not show.
func EventToMsg(evt events.Event) tea.Msg {
	switch evt.Type {
	case events.PollTick:
		tick := 0
		if evt.Tick != nil {
			tick = *evt.Tick
		}
		pending := 0
		if payload, ok := evt.Payload.(map[string]any); ok {
			if p, ok := payload["pending"].(int); ok {
				pending = p
			}
		}
		return PollTickMsg{Tick: tick, Pending: pending}

	case events.PollFinalSweep:
		return FinalSweepMsg{}

	case events.JobObserved:
		return JobObservedMsg{JobID: evt.Job, Status: evt.Status}

	case events.JobResolved:
		return JobResolvedMsg{JobID: evt.Job, Status: evt.Status}

	case events.JobFetchFailed:
		return JobFetchFailedMsg{JobID: evt.Job, Error: evt.Error}

	case events.JobUnresolved:
		return JobUnresolvedMsg{JobID: evt.Job}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
