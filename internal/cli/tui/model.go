package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// JobState tracks the state of a single job in the TUI
type JobState struct {
	ID       string
	Status   string
	Resolved bool
	Failures int    // fetch failures so far
	LastErr  string // most recent fetch error
}

// Model is the bubbletea model for the wait dashboard
type Model struct {
	// Configuration
	Timeout time.Duration
	Styles  Styles

	// State
	Order      []string
	Jobs       map[string]*JobState
	Tick       int
	FinalSweep bool
	StartTime  time.Time
	Spinner    spinner.Model
	LogLines   []LogEntry
	LogLimit   int
	ShowLogs   bool
	Width      int
	Height     int

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a dashboard for ids in request order.
func NewModel(ids []string, timeout time.Duration) *Model {
	styles := DefaultStyles()
	m := &Model{
		Timeout:   timeout,
		Styles:    styles,
		Jobs:      make(map[string]*JobState, len(ids)),
		StartTime: time.Now(),
		Spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.JobPending)),
		LogLimit:  200,
	}
	for _, id := range ids {
		if _, ok := m.Jobs[id]; ok {
			continue
		}
		m.Order = append(m.Order, id)
		m.Jobs[id] = &JobState{ID: id, Status: "PENDING"}
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		tickCmd(),
	)
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// PollTickMsg indicates a new poll tick began
type PollTickMsg struct {
	Tick    int
	Pending int
}

// FinalSweepMsg indicates the deadline passed and the last sweep began
type FinalSweepMsg struct{}

// JobObservedMsg carries a fetched, possibly non-terminal, status
type JobObservedMsg struct {
	JobID  string
	Status string
}

// JobResolvedMsg indicates a job reached a terminal status
type JobResolvedMsg struct {
	JobID  string
	Status string
}

// JobFetchFailedMsg indicates one fetch for a job failed
type JobFetchFailedMsg struct {
	JobID string
	Error string
}

// JobUnresolvedMsg indicates a job was given up on at the deadline
type JobUnresolvedMsg struct {
	JobID string
}
