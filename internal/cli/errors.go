package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/config"
	"github.com/RevCBH/swarm/internal/poll"
)

// Exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUnresolved = 2
)

// ErrUnresolved is returned by `wait --strict` when some jobs never
// reached a terminal state. The results are still printed.
var ErrUnresolved = errors.New("some jobs did not reach a terminal state")

// InterruptError is a command cancelled by a signal.
type InterruptError struct {
	Signal os.Signal
	Err    error
}

func (e *InterruptError) Error() string {
	return fmt.Sprintf("interrupted by %s: %v", e.Signal, e.Err)
}

func (e *InterruptError) Unwrap() error {
	return e.Err
}

// UsageError is a bad flag or argument combination.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ErrorPayload is the JSON document written to stderr on failure.
type ErrorPayload struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one failure.
type ErrorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Status   int    `json:"status,omitempty"`
	Guidance string `json:"guidance,omitempty"`
}

// Classify maps err onto the structured error payload.
func Classify(err error) ErrorBody {
	body := ErrorBody{Kind: "error", Message: err.Error()}

	var (
		apiErr       *api.APIError
		transportErr *api.TransportError
		timeoutErr   *poll.TimeoutError
		configErr    *config.ValidationError
		usageErr     *UsageError
		interruptErr *InterruptError
	)

	switch {
	case errors.Is(err, ErrUnresolved):
		body.Kind = "unresolved"
		body.Guidance = "Increase --timeout, or inspect the UNKNOWN jobs with `swarm get <id>`."
	case errors.Is(err, api.ErrMissingAPIKey):
		body.Kind = "auth"
		body.Status = http.StatusUnauthorized
		body.Guidance = "Set SWARM_API_KEY, add it to .env, or set api.key in ~/.swarm/config.yaml."
	case errors.As(err, &apiErr):
		body.Kind = "api"
		body.Message = apiErr.Message
		body.Status = apiErr.StatusCode
		body.Guidance = apiErr.Guidance()
	case errors.As(err, &transportErr):
		body.Kind = "transport"
		body.Guidance = "Check network connectivity and SWARM_API_URL."
	case errors.Is(err, api.ErrValidation):
		body.Kind = "validation"
	case errors.As(err, &timeoutErr):
		body.Kind = "timeout"
		body.Guidance = fmt.Sprintf("The job may still be running; check it with `swarm get %s` or wait again with a longer --timeout.", timeoutErr.JobID)
	case errors.As(err, &configErr):
		body.Kind = "config"
	case errors.As(err, &usageErr):
		body.Kind = "usage"
	case errors.As(err, &interruptErr):
		body.Kind = "cancelled"
		body.Guidance = fmt.Sprintf("Received %s; run the command again to resume.", interruptErr.Signal)
	case errors.Is(err, context.Canceled):
		body.Kind = "cancelled"
	}
	return body
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUnresolved):
		return ExitUnresolved
	default:
		return ExitFailure
	}
}

// WriteError writes the structured payload for err to w.
func WriteError(w io.Writer, err error) {
	data, marshalErr := json.MarshalIndent(ErrorPayload{Error: Classify(err)}, "", "  ")
	if marshalErr != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// ReportError writes the structured payload for err to the command's
// error stream.
func (a *App) ReportError(err error) {
	WriteError(a.rootCmd.ErrOrStderr(), err)
}
