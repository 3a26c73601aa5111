package webhook

import (
	"time"

	"github.com/RevCBH/swarm/internal/api"
)

// StatusChange is the body of a status-change delivery.
type StatusChange struct {
	Event     string     `json:"event"`
	Timestamp time.Time  `json:"timestamp"`
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Source    api.Source `json:"source"`
	Target    api.Target `json:"target"`
	Summary   string     `json:"summary,omitempty"`
}

// Job returns the delivery as a job snapshot.
func (s StatusChange) Job() *api.Job {
	return &api.Job{
		ID:        s.ID,
		Status:    api.ParseStatus(s.Status),
		RawStatus: s.Status,
		Source:    s.Source,
		Target:    s.Target,
		Summary:   s.Summary,
	}
}
