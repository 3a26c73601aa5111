package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		case "l":
			m.ShowLogs = !m.ShowLogs
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case TickMsg:
		// Continue ticking for timer updates
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case LogMsg:
		m.LogLines = append(m.LogLines, LogEntry{Line: msg.Line, Level: msg.Level})
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}

	case PollTickMsg:
		m.Tick = msg.Tick

	case FinalSweepMsg:
		m.FinalSweep = true

	case JobObservedMsg:
		if job, ok := m.Jobs[msg.JobID]; ok && !job.Resolved {
			job.Status = msg.Status
		}

	case JobResolvedMsg:
		if job, ok := m.Jobs[msg.JobID]; ok {
			job.Status = msg.Status
			job.Resolved = true
		}

	case JobFetchFailedMsg:
		if job, ok := m.Jobs[msg.JobID]; ok {
			job.Failures++
			job.LastErr = msg.Error
		}

	case JobUnresolvedMsg:
		if job, ok := m.Jobs[msg.JobID]; ok {
			job.Status = "UNKNOWN"
		}
	}

	return m, nil
}

// Counts returns resolved-by-status tallies and the pending count.
func (m *Model) Counts() (finished, failed, stopped, pending int) {
	for _, job := range m.Jobs {
		if !job.Resolved {
			pending++
			continue
		}
		switch job.Status {
		case "FINISHED":
			finished++
		case "FAILED":
			failed++
		case "STOPPED":
			stopped++
		}
	}
	return finished, failed, stopped, pending
}
