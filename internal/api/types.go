package api

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a remote job.
type Status int

const (
	// StatusUnrecognized is any status string outside the known set.
	// It is treated as non-terminal so callers keep polling.
	StatusUnrecognized Status = iota
	StatusCreating
	StatusRunning
	StatusFinished
	StatusStopped
	StatusFailed
)

var statusNames = map[Status]string{
	StatusUnrecognized: "UNRECOGNIZED",
	StatusCreating:     "CREATING",
	StatusRunning:      "RUNNING",
	StatusFinished:     "FINISHED",
	StatusStopped:      "STOPPED",
	StatusFailed:       "FAILED",
}

// ParseStatus maps a remote status label to a Status.
// Unknown labels return StatusUnrecognized.
func ParseStatus(s string) Status {
	for status, name := range statusNames {
		if status != StatusUnrecognized && name == s {
			return status
		}
	}
	return StatusUnrecognized
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnrecognized]
}

// Terminal reports whether the remote system will no longer change a job
// in this state. The terminal set is closed: FINISHED, STOPPED, FAILED.
func (s Status) Terminal() bool {
	switch s {
	case StatusFinished, StatusStopped, StatusFailed:
		return true
	default:
		return false
	}
}

// Source identifies the repository a job works against.
type Source struct {
	Repository string `json:"repository"`
	Ref        string `json:"ref,omitempty"`
}

// Target describes where a job publishes its work.
type Target struct {
	BranchName            string `json:"branchName,omitempty"`
	URL                   string `json:"url,omitempty"`
	PrURL                 string `json:"prUrl,omitempty"`
	AutoCreatePr          bool   `json:"autoCreatePr,omitempty"`
	SkipReviewerRequest   bool   `json:"skipReviewerRequest,omitempty"`
	OpenAsCursorGithubApp bool   `json:"openAsCursorGithubApp,omitempty"`
}

// Job is one remote unit of autonomous work.
// Everything except ID and Status is passed through uninterpreted.
type Job struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Status    Status    `json:"-"`
	RawStatus string    `json:"status"`
	Source    Source    `json:"source"`
	Target    Target    `json:"target"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// UnmarshalJSON decodes a job and derives Status from the raw label. It is
// the only pointer method on Job; the rest work on values so a Job in a
// slice or map marshals and reads the same as one behind a pointer.
func (j *Job) UnmarshalJSON(data []byte) error {
	type wire Job
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*j = Job(w)
	j.Status = ParseStatus(j.RawStatus)
	return nil
}

// MarshalJSON encodes a job, filling the status label from Status when
// the job was not decoded from the wire.
func (j Job) MarshalJSON() ([]byte, error) {
	type wire Job
	w := wire(j)
	if w.RawStatus == "" {
		w.RawStatus = j.Status.String()
	}
	return json.Marshal(w)
}

// BranchName is a convenience accessor for the target branch.
func (j Job) BranchName() string { return j.Target.BranchName }

// PrURL is a convenience accessor for the pull request link, if any.
func (j Job) PrURL() string { return j.Target.PrURL }

// Image is an image attached to a prompt.
type Image struct {
	Data      string          `json:"data"`
	Dimension *ImageDimension `json:"dimension,omitempty"`
}

// ImageDimension is the pixel size of an attached image.
type ImageDimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Prompt is the instruction text sent to an agent.
type Prompt struct {
	Text   string  `json:"text"`
	Images []Image `json:"images,omitempty"`
}

// TargetOptions controls what the agent does when it completes.
type TargetOptions struct {
	AutoCreatePr          bool   `json:"autoCreatePr,omitempty"`
	SkipReviewerRequest   bool   `json:"skipReviewerRequest,omitempty"`
	OpenAsCursorGithubApp bool   `json:"openAsCursorGithubApp,omitempty"`
	BranchName            string `json:"branchName,omitempty"`
}

// Webhook registers a status-change callback for a job.
type Webhook struct {
	URL    string `json:"url"`
	Secret string `json:"secret,omitempty"`
}

// CreateJobRequest is the payload for launching a new job.
type CreateJobRequest struct {
	Prompt  Prompt         `json:"prompt"`
	Source  Source         `json:"source"`
	Model   string         `json:"model,omitempty"`
	Target  *TargetOptions `json:"target,omitempty"`
	Webhook *Webhook       `json:"webhook,omitempty"`
}

// FollowUpRequest adds an instruction to a running job.
type FollowUpRequest struct {
	Prompt Prompt `json:"prompt"`
}

// ListOptions pages through jobs.
type ListOptions struct {
	Limit  int
	Cursor string
}

// JobPage is one page of ListJobs output.
type JobPage struct {
	Jobs       []Job  `json:"agents"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Message is one entry in a job's conversation.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// Conversation is the full, ordered transcript of a job.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// Ack acknowledges a mutating request. The remote may return no body,
// in which case ID is empty.
type Ack struct {
	ID string `json:"id,omitempty"`
}

// AccountInfo describes the credential in use.
type AccountInfo struct {
	APIKeyName string    `json:"apiKeyName"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
	UserEmail  string    `json:"userEmail,omitempty"`
}

// ModelList is the set of model selectors the remote accepts.
type ModelList struct {
	Models []string `json:"models"`
}

// Repository is a repository connected to the remote account.
type Repository struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	Repository string `json:"repository"`
}

// RepositoryList is the set of connected repositories.
type RepositoryList struct {
	Repositories []Repository `json:"repositories"`
}
