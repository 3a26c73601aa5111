package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/config"
	"github.com/RevCBH/swarm/internal/poll"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   string
		status int
	}{
		{"unresolved", ErrUnresolved, "unresolved", 0},
		{"missing key", api.ErrMissingAPIKey, "auth", 401},
		{"api error", fmt.Errorf("get job: %w", &api.APIError{StatusCode: 429, Message: "slow down"}), "api", 429},
		{"transport", &api.TransportError{Method: "GET", Path: "/v0/agents", Err: errors.New("connection refused")}, "transport", 0},
		{"validation", &api.ValidationError{Field: "prompt.text", Message: "must not be empty"}, "validation", 0},
		{"timeout", &poll.TimeoutError{JobID: "bc_1", LastStatus: "RUNNING", Timeout: time.Minute}, "timeout", 0},
		{"config", errors.Join(&config.ValidationError{Field: "output", Value: "x", Message: "bad"}), "config", 0},
		{"usage", &UsageError{Message: "bad flag"}, "usage", 0},
		{"cancelled", context.Canceled, "cancelled", 0},
		{"other", errors.New("boom"), "error", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := Classify(tt.err)
			assert.Equal(t, tt.kind, body.Kind)
			assert.Equal(t, tt.status, body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestClassify_APIErrorCarriesGuidance(t *testing.T) {
	body := Classify(&api.APIError{StatusCode: 401, Message: "invalid key"})

	assert.Equal(t, "invalid key", body.Message)
	assert.NotEmpty(t, body.Guidance)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUnresolved, ExitCode(fmt.Errorf("wait: %w", ErrUnresolved)))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, &api.APIError{StatusCode: 404, Message: "agent not found"})

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "api", payload.Error.Kind)
	assert.Equal(t, 404, payload.Error.Status)
	assert.Equal(t, "agent not found", payload.Error.Message)
}
