// Package poll waits for remote jobs to reach a terminal state.
//
// WaitJob follows one job and fails with a TimeoutError if it never
// finishes. WaitJobs follows many jobs at once, tolerates per-job fetch
// failures, and always returns one Result per requested ID.
package poll

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/events"
)

// JobFetcher fetches the current snapshot of a job. *api.Client satisfies it.
type JobFetcher interface {
	GetJob(ctx context.Context, id string) (*api.Job, error)
}

// Poller repeatedly fetches jobs until they reach a terminal state or a
// deadline passes. It holds no state between calls.
type Poller struct {
	fetcher JobFetcher
	logger  *slog.Logger
	bus     *events.Bus
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger for tick and fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithBus publishes poll lifecycle events on bus.
func WithBus(bus *events.Bus) Option {
	return func(p *Poller) { p.bus = bus }
}

// WithClock replaces the wall clock and the inter-tick sleep.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) {
		p.now = now
		p.sleep = sleep
	}
}

// New creates a Poller that reads job state through fetcher.
func New(fetcher JobFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher: fetcher,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitJob polls a single job every interval until it is terminal.
// When timeout elapses it fetches once more so a job that finished right at
// the deadline is still reported; if that look is non-terminal it returns a
// *TimeoutError carrying the last observed status. Fetch errors propagate.
func (p *Poller) WaitJob(ctx context.Context, id string, interval, timeout time.Duration) (*api.Job, error) {
	deadline := p.now().Add(timeout)
	var last *api.Job

	for tick := 1; p.now().Before(deadline); tick++ {
		job, err := p.fetcher.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if job != nil {
			last = job
			p.observe(tick, id, job)
			if job.Status.Terminal() {
				return job, nil
			}
		}
		if err := p.sleep(ctx, interval); err != nil {
			return nil, err
		}
	}

	p.bus.Emit(events.NewEvent(events.PollFinalSweep, id))
	job, err := p.fetcher.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job != nil {
		last = job
		if job.Status.Terminal() {
			p.bus.Emit(events.NewEvent(events.JobResolved, id).WithStatus(statusOf(job)))
			return job, nil
		}
	}

	timeoutErr := &TimeoutError{JobID: id, Timeout: timeout}
	if last != nil {
		timeoutErr.LastStatus = statusOf(last)
	}
	p.bus.Emit(events.NewEvent(events.JobUnresolved, id).WithStatus(timeoutErr.LastStatus))
	return nil, timeoutErr
}

// WaitJobs polls every job in ids until all are terminal or timeout
// elapses. Each tick fetches the still-pending jobs concurrently; a failed
// fetch leaves that job pending for the next tick instead of failing the
// call. After the deadline one final sweep covers the remaining jobs.
//
// The returned slice has one entry per distinct ID in request order. Jobs
// never seen terminal are reported as Unresolved. A non-nil error is only
// returned when ctx is cancelled, together with the results gathered so far.
func (p *Poller) WaitJobs(ctx context.Context, ids []string, interval, timeout time.Duration) ([]Result, error) {
	targets := dedupe(ids)
	deadline := p.now().Add(timeout)
	resolved := make(map[string]*api.Job, len(targets))

	p.bus.Emit(events.NewEvent(events.PollStarted, "").WithPayload(map[string]any{"job_count": len(targets)}))
	p.logger.Debug("poll started",
		slog.Int("jobs", len(targets)),
		slog.Duration("interval", interval),
		slog.Duration("timeout", timeout),
	)

	tick := 0
	for p.now().Before(deadline) {
		pending := pendingIDs(targets, resolved)
		if len(pending) == 0 {
			break
		}

		tick++
		p.sweep(ctx, tick, pending, resolved)
		if len(resolved) == len(targets) {
			break
		}

		if err := p.sleep(ctx, interval); err != nil {
			return p.collect(targets, resolved), err
		}
	}

	if pending := pendingIDs(targets, resolved); len(pending) > 0 {
		tick++
		p.bus.Emit(events.NewEvent(events.PollFinalSweep, "").WithTick(tick).WithPayload(map[string]any{"pending": len(pending)}))
		p.logger.Debug("deadline reached, final sweep", slog.Int("pending", len(pending)))
		p.sweep(ctx, tick, pending, resolved)
	}

	results := p.collect(targets, resolved)
	summary := Summarize(results)
	p.bus.Emit(events.NewEvent(events.PollCompleted, "").WithPayload(map[string]any{
		"resolved":   summary.Total - summary.Unresolved,
		"unresolved": summary.Unresolved,
	}))
	p.logger.Debug("poll completed",
		slog.Int("ticks", tick),
		slog.Int("resolved", summary.Total-summary.Unresolved),
		slog.Int("unresolved", summary.Unresolved),
	)
	// A cancelled fetch only leaves its job pending, so cancellation during
	// a sweep is reported here.
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// sweep fetches all pending jobs concurrently and promotes terminal ones
// into resolved once every fetch has settled.
func (p *Poller) sweep(ctx context.Context, tick int, pending []string, resolved map[string]*api.Job) {
	p.bus.Emit(events.NewEvent(events.PollTick, "").WithTick(tick).WithPayload(map[string]any{"pending": len(pending)}))

	jobs := make([]*api.Job, len(pending))
	errs := make([]error, len(pending))

	var g errgroup.Group
	for i, id := range pending {
		g.Go(func() error {
			jobs[i], errs[i] = p.fetcher.GetJob(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range pending {
		if errs[i] != nil {
			// Not-found is retried like any other failure but flagged, since
			// it usually means the job was deleted and will end UNKNOWN.
			notFound := api.IsNotFound(errs[i])
			p.logger.Debug("fetch failed, will retry next tick",
				slog.String("job", id),
				slog.Int("tick", tick),
				slog.Bool("not_found", notFound),
				slog.Any("error", errs[i]),
			)
			p.bus.Emit(events.NewEvent(events.JobFetchFailed, id).
				WithTick(tick).
				WithError(errs[i]).
				WithPayload(map[string]any{"not_found": notFound}))
			continue
		}
		job := jobs[i]
		if job == nil {
			continue
		}
		p.observe(tick, id, job)
		if job.Status.Terminal() {
			resolved[id] = job
			p.bus.Emit(events.NewEvent(events.JobResolved, id).WithStatus(statusOf(job)).WithTick(tick))
		}
	}
}

func (p *Poller) observe(tick int, id string, job *api.Job) {
	p.bus.Emit(events.NewEvent(events.JobObserved, id).WithStatus(statusOf(job)).WithTick(tick))
}

func (p *Poller) collect(targets []string, resolved map[string]*api.Job) []Result {
	results := make([]Result, 0, len(targets))
	for _, id := range targets {
		if job, ok := resolved[id]; ok {
			results = append(results, Resolved{ID: id, Job: job})
			continue
		}
		results = append(results, Unresolved{ID: id})
		p.bus.Emit(events.NewEvent(events.JobUnresolved, id).WithStatus(UnknownStatus))
	}
	return results
}

func pendingIDs(targets []string, resolved map[string]*api.Job) []string {
	var pending []string
	for _, id := range targets {
		if _, ok := resolved[id]; !ok {
			pending = append(pending, id)
		}
	}
	return pending
}

// dedupe keeps the first occurrence of each ID.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func statusOf(job *api.Job) string {
	if job.RawStatus != "" {
		return job.RawStatus
	}
	return job.Status.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
