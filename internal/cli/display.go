package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/config"
	"github.com/RevCBH/swarm/internal/poll"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	finishedStyle = cellStyle.Foreground(lipgloss.Color("42"))
	failedStyle   = cellStyle.Foreground(lipgloss.Color("196"))
	stoppedStyle  = cellStyle.Foreground(lipgloss.Color("245"))
	pendingStyle  = cellStyle.Foreground(lipgloss.Color("214"))
	unknownStyle  = cellStyle.Foreground(lipgloss.Color("177"))
)

// render writes v to w in the configured output format. Values without a
// table layout are always written as JSON.
func (a *App) render(w io.Writer, v any) error {
	format := config.DefaultOutput
	if a.cfg != nil {
		format = a.cfg.Output
	}
	if format == config.OutputTable {
		if t, ok := tableFor(v); ok {
			_, err := fmt.Fprintln(w, t)
			return err
		}
	}
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// tableFor lays out the value types that have a tabular form.
func tableFor(v any) (string, bool) {
	switch v := v.(type) {
	case *api.Job:
		return jobTable([]api.Job{*v}), true
	case *api.JobPage:
		out := jobTable(v.Jobs)
		if v.NextCursor != "" {
			out += "\nnext cursor: " + v.NextCursor
		}
		return out, true
	case []poll.Result:
		return resultTable(v), true
	case *api.RepositoryList:
		rows := make([][]string, 0, len(v.Repositories))
		for _, r := range v.Repositories {
			rows = append(rows, []string{r.Owner, r.Name, r.Repository})
		}
		return newTable([]string{"OWNER", "NAME", "URL"}, rows, -1), true
	case *api.ModelList:
		rows := make([][]string, 0, len(v.Models))
		for _, m := range v.Models {
			rows = append(rows, []string{m})
		}
		return newTable([]string{"MODEL"}, rows, -1), true
	default:
		return "", false
	}
}

func jobTable(jobs []api.Job) string {
	rows := make([][]string, 0, len(jobs))
	for i := range jobs {
		j := &jobs[i]
		rows = append(rows, []string{j.ID, j.Name, statusText(j), j.Source.Repository, j.BranchName(), j.PrURL()})
	}
	return newTable([]string{"ID", "NAME", "STATUS", "REPOSITORY", "BRANCH", "PR"}, rows, 2)
}

func resultTable(results []poll.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		pr := ""
		if res, ok := r.(poll.Resolved); ok && res.Job != nil {
			pr = res.Job.PrURL()
		}
		rows = append(rows, []string{r.JobID(), poll.StatusLabel(r), pr})
	}
	return newTable([]string{"ID", "STATUS", "PR"}, rows, 1)
}

// newTable renders rows under headers. statusCol, when not negative, is
// coloured by job status.
func newTable(headers []string, rows [][]string, statusCol int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusCol && row >= 0 && row < len(rows) {
				return statusStyle(rows[row][col])
			}
			return cellStyle
		})
	return t.String()
}

func statusStyle(label string) lipgloss.Style {
	if label == poll.UnknownStatus {
		return unknownStyle
	}
	switch api.ParseStatus(label) {
	case api.StatusFinished:
		return finishedStyle
	case api.StatusFailed:
		return failedStyle
	case api.StatusStopped:
		return stoppedStyle
	default:
		return pendingStyle
	}
}

func statusText(j *api.Job) string {
	if j.RawStatus != "" {
		return j.RawStatus
	}
	return j.Status.String()
}
