package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/cli/tui"
	"github.com/RevCBH/swarm/internal/events"
	"github.com/RevCBH/swarm/internal/logging"
	"github.com/RevCBH/swarm/internal/notify"
	"github.com/RevCBH/swarm/internal/poll"
)

const (
	eventBusCapacity = 256
	notifyTimeout    = 15 * time.Second
)

// WaitOptions holds flags for the wait command
type WaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	TUI      bool
	Strict   bool
	Events   bool
	NoNotify bool
}

// Validate checks the polling parameters.
func (opts WaitOptions) Validate() error {
	if opts.Interval <= 0 {
		return &UsageError{Message: fmt.Sprintf("--interval must be positive (got %s)", opts.Interval)}
	}
	if opts.Timeout < 0 {
		return &UsageError{Message: fmt.Sprintf("--timeout must not be negative (got %s)", opts.Timeout)}
	}
	return nil
}

// NewWaitCmd creates the wait command
func NewWaitCmd(app *App) *cobra.Command {
	opts := WaitOptions{}

	cmd := &cobra.Command{
		Use:   "wait <job-id>...",
		Short: "Poll jobs until they reach a terminal state",
		Long: `Poll one or more jobs until each is FINISHED, FAILED or STOPPED, or
the timeout elapses.

With one ID the final job is printed, and the command fails if the job is
still running at the deadline. With several IDs one result per job is
printed in argument order; jobs that never reached a terminal state are
reported as {"id": ..., "status": "UNKNOWN"}. Use --strict to exit with
status 2 in that case.`,
		Example: `  swarm wait bc_abc123
  swarm wait bc_abc123 bc_def456 --timeout 1h --tui`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := app.defaultWaitOptions()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				opts.Interval = defaults.Interval
			}
			if !cmd.Flags().Changed("timeout") {
				opts.Timeout = defaults.Timeout
			}
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			return app.RunWait(cmd.Context(), cmd, client, args, opts)
		},
	}

	f := cmd.Flags()
	f.DurationVarP(&opts.Interval, "interval", "i", 0, "Delay between polls (default from config, 10s)")
	f.DurationVarP(&opts.Timeout, "timeout", "t", 0, "Give up after this long (default from config, 30m)")
	f.BoolVar(&opts.TUI, "tui", false, "Show a live dashboard on stderr")
	f.BoolVar(&opts.Strict, "strict", false, "Exit with status 2 if any job is unresolved")
	f.BoolVar(&opts.Events, "events", false, "Stream poll events as JSON lines on stderr")
	f.BoolVar(&opts.NoNotify, "no-notify", false, "Skip completion notifications")

	return cmd
}

// defaultWaitOptions returns the poll settings from configuration.
func (a *App) defaultWaitOptions() (WaitOptions, error) {
	interval, err := a.cfg.PollIntervalDuration()
	if err != nil {
		return WaitOptions{}, err
	}
	timeout, err := a.cfg.PollTimeoutDuration()
	if err != nil {
		return WaitOptions{}, err
	}
	return WaitOptions{Interval: interval, Timeout: timeout}, nil
}

// RunWait polls ids with client and prints the outcome.
func (a *App) RunWait(ctx context.Context, cmd *cobra.Command, client poll.JobFetcher, ids []string, opts WaitOptions) error {
	if f, ok := cmd.ErrOrStderr().(*os.File); opts.TUI && !(ok && events.IsTerminal(f)) {
		a.logger.Warn("stderr is not a terminal, ignoring --tui")
		opts.TUI = false
	}

	bus := events.NewBus(eventBusCapacity)
	defer bus.Close()

	if opts.Events {
		bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(cmd.ErrOrStderr()), a.logger))
	}

	var outcome waitOutcome
	if opts.TUI {
		outcome = a.waitWithDashboard(ctx, cmd, client, bus, ids, opts)
	} else {
		bus.Subscribe(events.SlogHandler(a.logger))
		outcome = a.runPoll(ctx, client, a.logger, bus, ids, opts)
	}
	// Drain queued events before printing so --events output precedes the
	// result on a shared terminal.
	bus.Close()

	return a.finishWait(ctx, cmd, outcome, opts)
}

// waitOutcome is what one wait produced: a job for a single ID, results
// for several.
type waitOutcome struct {
	single  bool
	id      string
	job     *api.Job
	results []poll.Result
	err     error
}

func (a *App) runPoll(ctx context.Context, client poll.JobFetcher, logger *slog.Logger, bus *events.Bus, ids []string, opts WaitOptions) waitOutcome {
	poller := poll.New(client, poll.WithLogger(logger), poll.WithBus(bus))

	if len(ids) == 1 {
		job, err := poller.WaitJob(ctx, ids[0], opts.Interval, opts.Timeout)
		return waitOutcome{single: true, id: ids[0], job: job, err: err}
	}

	results, err := poller.WaitJobs(ctx, ids, opts.Interval, opts.Timeout)
	return waitOutcome{results: results, err: err}
}

// waitWithDashboard runs the poll behind the bubbletea dashboard. Logs are
// routed into the dashboard's log pane. Quitting the dashboard cancels the
// poll.
func (a *App) waitWithDashboard(ctx context.Context, cmd *cobra.Command, client poll.JobFetcher, bus *events.Bus, ids []string, opts WaitOptions) waitOutcome {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(ids, opts.Timeout)
	program := tea.NewProgram(model, tea.WithOutput(cmd.ErrOrStderr()))

	bridge := tui.NewBridge(program)
	bus.Subscribe(bridge.Handler())

	logWriter := tui.NewLogWriter(program)
	logCfg := a.logCfg
	logCfg.NoColor = true
	logger := logging.New(logCfg, logWriter)
	bus.Subscribe(dashboardLogHandler(logWriter))
	// SIGTERM does not reach the dashboard as a key press.
	a.onInterrupt(bridge.SendQuit)

	programDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		cancel()
		programDone <- err
	}()

	outcome := a.runPoll(pollCtx, client, logger, bus, ids, opts)

	bus.Close()
	logWriter.Close()
	bridge.SendDone()

	if err := <-programDone; err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Warn("dashboard exited with error", slog.Any("error", err))
	}
	if model.Quitting && outcome.err == nil && ctx.Err() == nil && pollCtx.Err() != nil {
		outcome.err = context.Canceled
	}
	return outcome
}

// dashboardLogHandler writes poll events to the dashboard's log pane as
// plain lines; failures carry the WRN level the pane highlights.
func dashboardLogHandler(w io.Writer) events.Handler {
	return events.LogHandler(events.LogConfig{
		Writer:     w,
		TimeFormat: time.TimeOnly,
	})
}

// finishWait prints the outcome, sends the completion notification and
// maps the outcome to the command error.
func (a *App) finishWait(ctx context.Context, cmd *cobra.Command, o waitOutcome, opts WaitOptions) error {
	if o.single {
		var timeoutErr *poll.TimeoutError
		switch {
		case o.err == nil:
			a.notifyCompletion(ctx, opts, notify.ForJob(o.job))
			return a.render(cmd.OutOrStdout(), o.job)
		case errors.As(o.err, &timeoutErr):
			a.notifyCompletion(ctx, opts, notify.ForResults([]poll.Result{poll.Unresolved{ID: o.id}}))
			return o.err
		default:
			return o.err
		}
	}

	if o.results != nil {
		if err := a.render(cmd.OutOrStdout(), o.results); err != nil {
			return err
		}
	}
	if o.err != nil {
		return o.err
	}

	a.notifyCompletion(ctx, opts, notify.ForResults(o.results))

	if opts.Strict && !poll.Summarize(o.results).Complete() {
		return ErrUnresolved
	}
	return nil
}

// notifyCompletion dispatches n to the configured backends. Failures are
// logged and never change the wait result.
func (a *App) notifyCompletion(ctx context.Context, opts WaitOptions, n notify.Notification) {
	if opts.NoNotify || ctx.Err() != nil {
		return
	}

	notifier, err := a.newNotifier(a.cfg)
	if err != nil {
		a.logger.Warn("notifier unavailable", slog.Any("error", err))
		return
	}
	defer func() {
		if err := notify.Close(notifier); err != nil {
			a.logger.Debug("closing notifier", slog.Any("error", err))
		}
	}()

	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := notifier.Notify(nctx, n); err != nil {
		a.logger.Warn("notification failed",
			slog.String("backend", notifier.Name()),
			slog.Any("error", err),
		)
	}
}
