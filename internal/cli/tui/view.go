package tui

import (
	"fmt"
	"strings"
	"time"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	// Header
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	// Jobs in request order
	b.WriteString(m.renderJobs())

	// Status line
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if m.ShowLogs {
		b.WriteString(m.renderLogs())
	}

	// Footer
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer and tick counter
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s / %s]", formatDuration(elapsed), formatDuration(m.Timeout))

	phase := fmt.Sprintf("tick %d", m.Tick)
	if m.FinalSweep {
		phase = "final sweep"
	}

	return fmt.Sprintf("%s  %s  %s",
		m.Styles.Title.Render("Swarm"),
		m.Styles.Timer.Render(timer),
		m.Styles.Phase.Render(phase),
	)
}

// renderJobs renders one line per job
func (m *Model) renderJobs() string {
	if len(m.Order) == 0 {
		return "  No jobs\n\n"
	}

	var b strings.Builder
	for _, id := range m.Order {
		b.WriteString(m.renderJob(m.Jobs[id]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderJob renders a single job: ✓ bc-123 FINISHED
func (m *Model) renderJob(job *JobState) string {
	icon, style := m.Spinner.View(), m.Styles.JobPending
	if job.Resolved {
		switch job.Status {
		case "FINISHED":
			icon, style = IconFinished, m.Styles.JobFinished
		case "FAILED":
			icon, style = IconFailed, m.Styles.JobFailed
		default:
			icon, style = IconStopped, m.Styles.JobStopped
		}
		icon = style.Render(icon)
	} else if job.Status == "UNKNOWN" {
		icon, style = m.Styles.JobUnknown.Render(IconUnknown), m.Styles.JobUnknown
	}

	line := fmt.Sprintf("  %s %s %s", icon, m.Styles.JobName.Render(job.ID), style.Render(job.Status))
	if job.Failures > 0 {
		line += m.Styles.Retry.Render(fmt.Sprintf("  (%d failed fetches: %s)", job.Failures, job.LastErr))
	}
	return line
}

// renderStatusLine renders the summary status line
func (m *Model) renderStatusLine() string {
	finished, failed, stopped, pending := m.Counts()

	return fmt.Sprintf("  Jobs: %d/%d %s | %s | %s | %s",
		finished+failed+stopped,
		len(m.Order),
		m.Styles.JobFinished.Render(fmt.Sprintf("%d finished", finished)),
		m.Styles.JobFailed.Render(fmt.Sprintf("%d failed", failed)),
		m.Styles.JobStopped.Render(fmt.Sprintf("%d stopped", stopped)),
		m.Styles.JobPending.Render(fmt.Sprintf("%d pending", pending)),
	)
}

// renderLogs renders the tail of the log buffer that fits the window
func (m *Model) renderLogs() string {
	limit := 10
	if m.Height > 0 {
		limit = max(m.Height-len(m.Order)-8, 3)
	}
	lines := m.LogLines
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.Styles.LogTitle.Render("  Logs"))
	b.WriteString("\n")
	for _, entry := range lines {
		style := m.Styles.LogLine
		switch entry.Level {
		case LogWarn:
			style = m.Styles.LogWarn
		case LogError:
			style = m.Styles.LogError
		}
		b.WriteString("  ")
		b.WriteString(style.Render(entry.Line))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	q := m.Styles.FooterKey.Render("q")
	l := m.Styles.FooterKey.Render("l")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit, %s to toggle logs", q, l))
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
