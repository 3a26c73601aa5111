package cli

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/swarm/internal/cli/tui"
	"github.com/RevCBH/swarm/internal/events"
	"github.com/RevCBH/swarm/internal/notify"
	"github.com/RevCBH/swarm/internal/poll"
)

func TestWaitOptions_Validate(t *testing.T) {
	assert.NoError(t, WaitOptions{Interval: time.Second}.Validate())
	assert.NoError(t, WaitOptions{Interval: time.Second, Timeout: 0}.Validate())
	assert.Error(t, WaitOptions{Interval: 0}.Validate())
	assert.Error(t, WaitOptions{Interval: time.Second, Timeout: -time.Second}.Validate())
}

func TestWait_SingleJobFinishes(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_1", "RUNNING", "RUNNING", "FINISHED")

	require.NoError(t, ta.run("wait", "bc_1"))

	var job map[string]any
	require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &job))
	assert.Equal(t, "FINISHED", job["status"])

	require.Len(t, ta.notifier.sent, 1)
	assert.Equal(t, notify.SeverityInfo, ta.notifier.sent[0].Severity)
	assert.Equal(t, "bc_1", ta.notifier.sent[0].Job)
}

func TestWait_SingleJobTimesOut(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_1", "RUNNING")

	err := ta.run("wait", "bc_1", "--interval", "5ms", "--timeout", "20ms")

	var timeoutErr *poll.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "RUNNING", timeoutErr.LastStatus)
	assert.Equal(t, "timeout", Classify(err).Kind)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Empty(t, ta.stdout.String())

	require.Len(t, ta.notifier.sent, 1)
	assert.Equal(t, notify.SeverityWarning, ta.notifier.sent[0].Severity)
}

func TestWait_MultipleJobsInRequestOrder(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_a", "FINISHED")
	ta.api.script("bc_b", "RUNNING", "FAILED")
	ta.api.script("bc_c", "RUNNING")

	require.NoError(t, ta.run("wait", "bc_c", "bc_a", "bc_b", "--timeout", "30ms"))

	var results []map[string]any
	require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &results))
	require.Len(t, results, 3)

	assert.Equal(t, "bc_c", results[0]["id"])
	assert.Equal(t, poll.UnknownStatus, results[0]["status"])
	assert.Equal(t, "bc_a", results[1]["id"])
	assert.Equal(t, "FINISHED", results[1]["status"])
	assert.Equal(t, "bc_b", results[2]["id"])
	assert.Equal(t, "FAILED", results[2]["status"])

	require.Len(t, ta.notifier.sent, 1)
	assert.Equal(t, notify.SeverityCritical, ta.notifier.sent[0].Severity)
}

func TestWait_StrictUnresolved(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_a", "FINISHED")
	ta.api.script("bc_b", "RUNNING")

	err := ta.run("wait", "bc_a", "bc_b", "--timeout", "20ms", "--strict")

	require.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, ExitUnresolved, ExitCode(err))
	assert.Contains(t, ta.stdout.String(), poll.UnknownStatus, "results are printed before the error")
}

func TestWait_StrictAllResolved(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_a", "FINISHED")
	ta.api.script("bc_b", "STOPPED")

	assert.NoError(t, ta.run("wait", "bc_a", "bc_b", "--strict"))
}

func TestWait_NoNotify(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_1", "FINISHED")

	require.NoError(t, ta.run("wait", "bc_1", "--no-notify"))

	assert.Empty(t, ta.notifier.sent)
}

func TestWait_EventsStream(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_a", "FINISHED")
	ta.api.script("bc_b", "FINISHED")

	require.NoError(t, ta.run("wait", "bc_a", "bc_b", "--events"))

	stderr := ta.stderr.String()
	assert.Contains(t, stderr, `"type":"poll.started"`)
	assert.Contains(t, stderr, `"type":"job.resolved"`)
}

func TestWait_TUIFallsBackWithoutTerminal(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_1", "FINISHED")

	require.NoError(t, ta.run("wait", "bc_1", "--tui"))

	assert.Contains(t, ta.stdout.String(), "FINISHED")
}

func TestWait_CancelledContextReturnsPartialResults(t *testing.T) {
	ta := newTestApp(t)
	ta.api.script("bc_a", "FINISHED")
	ta.api.script("bc_b", "RUNNING")
	require.NoError(t, ta.loadConfig(ta.rootCmd))

	ctx, cancel := context.WithCancel(context.Background())
	cmd := &cobra.Command{}
	cmd.SetOut(ta.stdout)
	cmd.SetErr(ta.stderr)

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := ta.RunWait(ctx, cmd, ta.api, []string{"bc_a", "bc_b"}, WaitOptions{Interval: 5 * time.Millisecond, Timeout: time.Minute})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "cancelled", Classify(err).Kind)
	assert.Contains(t, ta.stdout.String(), `"status": "FINISHED"`)
	assert.Empty(t, ta.notifier.sent, "no notification after interruption")
}

func TestCreate_WaitFollowsNewJob(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("create", "--repo", "https://github.com/acme/api", "--prompt", "fix it", "--wait"))

	require.Len(t, ta.api.created, 1)
	var job map[string]any
	require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &job))
	assert.Equal(t, "bc_new", job["id"])
	assert.Equal(t, "FINISHED", job["status"])
}

func TestDashboardLogHandler_LevelsMatchLogPane(t *testing.T) {
	var buf bytes.Buffer
	handler := dashboardLogHandler(&buf)

	handler(events.NewEvent(events.JobFetchFailed, "bc_1").WithError(errors.New("503")))
	handler(events.NewEvent(events.JobResolved, "bc_2").WithStatus("FINISHED"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, tui.LogWarn, tui.ParseLogLevel(lines[0]))
	assert.Contains(t, lines[0], "bc_1")
	assert.Equal(t, tui.LogInfo, tui.ParseLogLevel(lines[1]))
	assert.Contains(t, lines[1], "status=FINISHED")
}
