package poll

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/events"
)

// scriptedFetcher returns a per-job sequence of responses; the last entry
// repeats once the script is exhausted.
type scriptedFetcher struct {
	mu      sync.Mutex
	scripts map[string][]response
	calls   map[string]int
}

type response struct {
	status api.Status
	err    error
}

func newScriptedFetcher(scripts map[string][]response) *scriptedFetcher {
	return &scriptedFetcher{scripts: scripts, calls: make(map[string]int)}
}

func (f *scriptedFetcher) GetJob(ctx context.Context, id string) (*api.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	script, ok := f.scripts[id]
	if !ok {
		return nil, &api.APIError{StatusCode: 404, Message: "not found"}
	}
	n := f.calls[id]
	f.calls[id] = n + 1
	if n >= len(script) {
		n = len(script) - 1
	}
	r := script[n]
	if r.err != nil {
		return nil, r.err
	}
	return &api.Job{ID: id, Status: r.status, RawStatus: r.status.String()}, nil
}

func (f *scriptedFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// fakeClock advances time only when sleep is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps++
	c.now = c.now.Add(d)
	return nil
}

func newTestPoller(f JobFetcher, clock *fakeClock, opts ...Option) *Poller {
	opts = append([]Option{WithClock(clock.Now, clock.Sleep)}, opts...)
	return New(f, opts...)
}

func statusMap(results []Result) map[string]string {
	m := make(map[string]string, len(results))
	for _, r := range results {
		m[r.JobID()] = StatusLabel(r)
	}
	return m
}

func ok(s api.Status) response { return response{status: s} }

var errFlaky = errors.New("connection reset")

func TestWaitJobs_ScenarioMixedOutcomes(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {ok(api.StatusRunning), ok(api.StatusFailed)},
		"C": {ok(api.StatusRunning)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"A", "B", "C"}, time.Second, 2*time.Second)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "A", results[0].JobID())
	assert.Equal(t, "B", results[1].JobID())
	assert.Equal(t, "C", results[2].JobID())
	assert.Equal(t, map[string]string{"A": "FINISHED", "B": "FAILED", "C": UnknownStatus}, statusMap(results))
	assert.IsType(t, Unresolved{}, results[2])
	assert.Equal(t, 2, clock.sleeps)

	data, err := json.Marshal(results[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"C","status":"UNKNOWN"}`, string(data))
}

func TestWaitJobs_AllTerminalFirstTick(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {ok(api.StatusStopped)},
		"C": {ok(api.StatusFailed)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"A", "B", "C"}, time.Second, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 0, clock.sleeps)
	assert.Equal(t, 3, fetcher.totalCalls())
	summary := Summarize(results)
	assert.True(t, summary.Complete())
	assert.Equal(t, Summary{Total: 3, Finished: 1, Failed: 1, Stopped: 1}, summary)
}

func TestWaitJobs_ResolvedSetMakesNoFurtherCalls(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {ok(api.StatusFinished)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	for range 2 {
		before := fetcher.totalCalls()
		_, err := p.WaitJobs(context.Background(), []string{"A", "B"}, time.Second, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, fetcher.totalCalls()-before, "one fetch per job, nothing after resolution")
	}
	assert.Equal(t, 0, clock.sleeps)
}

func TestWaitJobs_FailingJobDoesNotBlockOthers(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"good-1": {ok(api.StatusRunning), ok(api.StatusFinished)},
		"flaky":  {{err: errFlaky}},
		"good-2": {ok(api.StatusCreating), ok(api.StatusRunning), ok(api.StatusFinished)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"good-1", "flaky", "good-2"}, time.Second, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"good-1": "FINISHED",
		"flaky":  UnknownStatus,
		"good-2": "FINISHED",
	}, statusMap(results))

	// flaky is retried on every tick plus the final sweep
	fetcher.mu.Lock()
	flakyCalls := fetcher.calls["flaky"]
	fetcher.mu.Unlock()
	assert.Equal(t, 6, flakyCalls)
}

func TestWaitJobs_TransientFailureRecovers(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {{err: errFlaky}, {err: errFlaky}, ok(api.StatusFinished)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"A"}, time.Second, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "FINISHED", StatusLabel(results[0]))
	assert.Equal(t, 2, clock.sleeps)
}

func TestWaitJobs_FinalSweepCapturesBoundaryTransition(t *testing.T) {
	// Two in-loop ticks see RUNNING; the job is FINISHED by the final sweep.
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusRunning), ok(api.StatusRunning), ok(api.StatusFinished)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"A"}, time.Second, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "FINISHED", StatusLabel(results[0]))
	assert.Equal(t, 2, clock.sleeps)
	assert.Equal(t, 3, fetcher.totalCalls())
}

func TestWaitJobs_ZeroTimeoutStillLooksOnce(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {ok(api.StatusRunning)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"A", "B"}, time.Second, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "FINISHED", "B": UnknownStatus}, statusMap(results))
	assert.Equal(t, 0, clock.sleeps)
	assert.Equal(t, 2, fetcher.totalCalls())
}

func TestWaitJobs_PreservesRequestOrder(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"z": {ok(api.StatusRunning), ok(api.StatusRunning), ok(api.StatusFinished)},
		"y": {ok(api.StatusRunning), ok(api.StatusFinished)},
		"x": {ok(api.StatusFinished)},
	})
	p := newTestPoller(fetcher, newFakeClock())

	results, err := p.WaitJobs(context.Background(), []string{"z", "y", "x", "y"}, time.Second, time.Minute)
	require.NoError(t, err)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.JobID()
	}
	assert.Equal(t, []string{"z", "y", "x"}, ids)
}

func TestWaitJobs_UnknownStatusKeepsPolling(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusUnrecognized), ok(api.StatusUnrecognized), ok(api.StatusFinished)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), []string{"A"}, time.Second, time.Minute)
	require.NoError(t, err)
	assert.True(t, results[0].IsResolved())
	assert.Equal(t, 2, clock.sleeps)
}

func TestWaitJobs_Empty(t *testing.T) {
	fetcher := newScriptedFetcher(nil)
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	results, err := p.WaitJobs(context.Background(), nil, time.Second, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, fetcher.totalCalls())
	assert.Equal(t, 0, clock.sleeps)
}

func TestWaitJobs_ContextCancelled(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {ok(api.StatusRunning)},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestPoller(fetcher, newFakeClock())

	results, err := p.WaitJobs(ctx, []string{"A", "B"}, time.Second, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	assert.True(t, results[0].IsResolved())
	assert.False(t, results[1].IsResolved())
}

func TestWaitJobs_CancelledDuringFinalSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	fetcher := fetchFunc(func(ctx context.Context, id string) (*api.Job, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			cancel()
			return nil, ctx.Err()
		}
		return &api.Job{ID: id, Status: api.StatusRunning}, nil
	})
	p := newTestPoller(fetcher, newFakeClock())

	results, err := p.WaitJobs(ctx, []string{"A"}, time.Second, time.Second)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
	require.Len(t, results, 1)
	assert.False(t, results[0].IsResolved())
}

func TestWaitJobs_FlagsNotFoundFailures(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {{err: errFlaky}},
	})
	bus := events.NewBus(100)
	var mu sync.Mutex
	notFound := map[string]bool{}
	bus.Subscribe(func(e events.Event) {
		if e.Type != events.JobFetchFailed {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		notFound[e.Job] = e.Payload.(map[string]any)["not_found"].(bool)
	})
	p := newTestPoller(fetcher, newFakeClock(), WithBus(bus))

	// "gone" has no script, so the fetcher answers 404.
	_, err := p.WaitJobs(context.Background(), []string{"A", "B", "gone"}, time.Second, time.Second)
	require.NoError(t, err)
	bus.Close()

	assert.Equal(t, map[string]bool{"B": false, "gone": true}, notFound)
}

func TestWaitJobs_FetchesConcurrently(t *testing.T) {
	// Every fetch blocks until all three are in flight; a sequential
	// poller would deadlock here.
	var wg sync.WaitGroup
	wg.Add(3)
	fetcher := fetchFunc(func(ctx context.Context, id string) (*api.Job, error) {
		wg.Done()
		wg.Wait()
		return &api.Job{ID: id, Status: api.StatusFinished}, nil
	})
	p := newTestPoller(fetcher, newFakeClock())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := p.WaitJobs(context.Background(), []string{"a", "b", "c"}, time.Second, time.Minute)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fetches were not issued concurrently")
	}
}

func TestWaitJobs_EmitsEvents(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusFinished)},
		"B": {{err: errFlaky}},
	})
	bus := events.NewBus(100)
	var mu sync.Mutex
	seen := map[events.EventType]int{}
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen[e.Type]++
	})
	p := newTestPoller(fetcher, newFakeClock(), WithBus(bus))

	_, err := p.WaitJobs(context.Background(), []string{"A", "B"}, time.Second, time.Second)
	require.NoError(t, err)
	bus.Close()

	assert.Equal(t, 1, seen[events.PollStarted])
	assert.Equal(t, 1, seen[events.JobResolved])
	assert.Equal(t, 2, seen[events.JobFetchFailed])
	assert.Equal(t, 1, seen[events.PollFinalSweep])
	assert.Equal(t, 1, seen[events.JobUnresolved])
	assert.Equal(t, 1, seen[events.PollCompleted])
}

func TestWaitJob_TerminalImmediately(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{"A": {ok(api.StatusStopped)}})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	job, err := p.WaitJob(context.Background(), "A", time.Second, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, api.StatusStopped, job.Status)
	assert.Equal(t, 0, clock.sleeps)
}

func TestWaitJob_FinalCheckSucceeds(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{
		"A": {ok(api.StatusRunning), ok(api.StatusRunning), ok(api.StatusRunning), ok(api.StatusFinished)},
	})
	clock := newFakeClock()
	p := newTestPoller(fetcher, clock)

	job, err := p.WaitJob(context.Background(), "A", time.Second, 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, api.StatusFinished, job.Status)
	assert.Equal(t, 3, clock.sleeps)
	assert.Equal(t, 4, fetcher.totalCalls())
}

func TestWaitJob_Timeout(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{"A": {ok(api.StatusCreating), ok(api.StatusRunning)}})
	p := newTestPoller(fetcher, newFakeClock())

	job, err := p.WaitJob(context.Background(), "A", time.Second, 2*time.Second)
	assert.Nil(t, job)
	require.ErrorIs(t, err, ErrTimeout)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "A", timeoutErr.JobID)
	assert.Equal(t, "RUNNING", timeoutErr.LastStatus)
	assert.Equal(t, "job A still RUNNING after 2s", err.Error())
}

func TestWaitJob_FetchErrorPropagates(t *testing.T) {
	fetcher := newScriptedFetcher(map[string][]response{"A": {{err: errFlaky}}})
	p := newTestPoller(fetcher, newFakeClock())

	_, err := p.WaitJob(context.Background(), "A", time.Second, time.Minute)
	assert.ErrorIs(t, err, errFlaky)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestSummary(t *testing.T) {
	results := []Result{
		Resolved{ID: "a", Job: &api.Job{ID: "a", Status: api.StatusFinished}},
		Resolved{ID: "b", Job: &api.Job{ID: "b", Status: api.StatusFinished}},
		Unresolved{ID: "c"},
	}
	s := Summarize(results)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Finished)
	assert.Equal(t, 1, s.Unresolved)
	assert.False(t, s.Complete())
	assert.False(t, s.AllFinished())
}

type fetchFunc func(ctx context.Context, id string) (*api.Job, error)

func (f fetchFunc) GetJob(ctx context.Context, id string) (*api.Job, error) { return f(ctx, id) }
