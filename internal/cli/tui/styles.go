package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the TUI
type Styles struct {
	// Header styling
	Title lipgloss.Style
	Timer lipgloss.Style
	Phase lipgloss.Style

	// Job styling
	JobName     lipgloss.Style
	JobPending  lipgloss.Style
	JobFinished lipgloss.Style
	JobFailed   lipgloss.Style
	JobStopped  lipgloss.Style
	JobUnknown  lipgloss.Style
	Retry       lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
	LogWarn  lipgloss.Style
	LogError lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Phase: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),

		JobName:     lipgloss.NewStyle().Bold(true),
		JobPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		JobFinished: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		JobFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		JobStopped:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		JobUnknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("177")),
		Retry:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		LogWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		LogError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Icons used in the TUI
const (
	IconFinished = "✓"
	IconFailed   = "✗"
	IconStopped  = "■"
	IconUnknown  = "?"
)
