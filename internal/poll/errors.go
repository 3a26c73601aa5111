package poll

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is matched by every TimeoutError.
var ErrTimeout = errors.New("timed out waiting for job")

// TimeoutError reports a single-job wait whose deadline passed while the
// job was still non-terminal. The remote job itself may be healthy.
type TimeoutError struct {
	JobID      string
	LastStatus string
	Timeout    time.Duration
}

func (e *TimeoutError) Error() string {
	status := e.LastStatus
	if status == "" {
		status = UnknownStatus
	}
	return fmt.Sprintf("job %s still %s after %s", e.JobID, status, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}
