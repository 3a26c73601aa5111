package notify

import (
	"fmt"
	"strings"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/poll"
)

// ForResults summarises a multi-job wait.
func ForResults(results []poll.Result) Notification {
	s := poll.Summarize(results)

	n := Notification{
		Severity: SeverityInfo,
		Context: map[string]string{
			"total":      fmt.Sprint(s.Total),
			"finished":   fmt.Sprint(s.Finished),
			"failed":     fmt.Sprint(s.Failed),
			"stopped":    fmt.Sprint(s.Stopped),
			"unresolved": fmt.Sprint(s.Unresolved),
		},
	}

	switch {
	case s.Failed > 0:
		n.Severity = SeverityCritical
	case s.Stopped > 0 || s.Unresolved > 0:
		n.Severity = SeverityWarning
	}

	if s.AllFinished() {
		n.Title = fmt.Sprintf("All %d jobs finished", s.Total)
	} else {
		n.Title = fmt.Sprintf("%d of %d jobs finished", s.Finished, s.Total)
	}

	var lines []string
	for _, r := range results {
		line := fmt.Sprintf("%s: %s", r.JobID(), poll.StatusLabel(r))
		if res, ok := r.(poll.Resolved); ok && res.Job != nil && res.Job.PrURL() != "" {
			line += " " + res.Job.PrURL()
		}
		lines = append(lines, line)
	}
	n.Message = strings.Join(lines, "\n")

	if len(results) == 1 {
		n.Job = results[0].JobID()
	}
	return n
}

// ForJob describes a single job that reached a terminal state.
func ForJob(job *api.Job) Notification {
	n := Notification{
		Severity: severityOf(job.Status),
		Job:      job.ID,
		Title:    fmt.Sprintf("Job %s %s", job.ID, statusLabel(job)),
		Message:  job.Summary,
		Context:  map[string]string{},
	}
	if job.Name != "" {
		n.Context["name"] = job.Name
	}
	if job.Source.Repository != "" {
		n.Context["repository"] = job.Source.Repository
	}
	if b := job.BranchName(); b != "" {
		n.Context["branch"] = b
	}
	if pr := job.PrURL(); pr != "" {
		n.Context["pr_url"] = pr
	}
	return n
}

func severityOf(s api.Status) Severity {
	switch s {
	case api.StatusFailed:
		return SeverityCritical
	case api.StatusFinished:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

func statusLabel(job *api.Job) string {
	if job.RawStatus != "" {
		return job.RawStatus
	}
	return job.Status.String()
}
