package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is matched by every local validation failure.
	ErrValidation = errors.New("invalid request")

	// ErrWebhookSecretTooShort indicates a webhook secret below MinWebhookSecretLength
	ErrWebhookSecretTooShort = fmt.Errorf("%w: webhook secret must be at least %d characters", ErrValidation, MinWebhookSecretLength)

	// ErrMissingAPIKey indicates the client was built without a credential
	ErrMissingAPIKey = errors.New("api key cannot be empty")
)

// ValidationError reports a request rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// TransportError wraps failures to reach the remote service at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-success response from the remote service.
type APIError struct {
	StatusCode int
	Message    string
	// Body is the parsed response body, nil when absent or unparsable.
	Body any
}

func (e *APIError) Error() string {
	if g := e.Guidance(); g != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, g)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Guidance returns advice for well-known status codes, or "".
func (e *APIError) Guidance() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "check that SWARM_API_KEY is set to a valid key"
	case http.StatusForbidden:
		return "check that the GitHub integration is installed for this repository"
	case http.StatusNotFound:
		return "the job may have been deleted"
	case http.StatusTooManyRequests:
		return "rate limited, back off before retrying"
	default:
		return ""
	}
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
