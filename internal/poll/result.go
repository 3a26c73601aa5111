package poll

import (
	"encoding/json"

	"github.com/RevCBH/swarm/internal/api"
)

// UnknownStatus is the status label reported for jobs never observed in a
// terminal state before the deadline.
const UnknownStatus = "UNKNOWN"

// Result is the outcome for one requested job ID. It is either Resolved or
// Unresolved; an Unresolved result is a polling artifact, never a remote status.
type Result interface {
	JobID() string
	IsResolved() bool
	isResult()
}

// Resolved holds the terminal record observed for a job.
type Resolved struct {
	ID  string
	Job *api.Job
}

func (r Resolved) JobID() string    { return r.ID }
func (r Resolved) IsResolved() bool { return true }
func (Resolved) isResult()          {}

// MarshalJSON encodes the terminal job record as-is.
func (r Resolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Job)
}

// Unresolved is the placeholder for a job whose terminal state was not
// observed before the deadline.
type Unresolved struct {
	ID string
}

func (u Unresolved) JobID() string    { return u.ID }
func (u Unresolved) IsResolved() bool { return false }
func (Unresolved) isResult()          {}

// MarshalJSON encodes the placeholder as {"id": ..., "status": "UNKNOWN"}.
func (u Unresolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}{ID: u.ID, Status: UnknownStatus})
}

// StatusLabel returns the remote status of a resolved result or
// UnknownStatus for a placeholder.
func StatusLabel(r Result) string {
	if res, ok := r.(Resolved); ok && res.Job != nil {
		if res.Job.RawStatus != "" {
			return res.Job.RawStatus
		}
		return res.Job.Status.String()
	}
	return UnknownStatus
}

// Summary counts results by outcome.
type Summary struct {
	Total      int `json:"total"`
	Finished   int `json:"finished"`
	Failed     int `json:"failed"`
	Stopped    int `json:"stopped"`
	Unresolved int `json:"unresolved"`
}

// Summarize tallies a result set.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		res, ok := r.(Resolved)
		if !ok || res.Job == nil {
			s.Unresolved++
			continue
		}
		switch res.Job.Status {
		case api.StatusFinished:
			s.Finished++
		case api.StatusFailed:
			s.Failed++
		case api.StatusStopped:
			s.Stopped++
		}
	}
	return s
}

// Complete reports whether every job reached a terminal state.
func (s Summary) Complete() bool {
	return s.Unresolved == 0
}

// AllFinished reports whether every job finished successfully.
func (s Summary) AllFinished() bool {
	return s.Finished == s.Total
}
