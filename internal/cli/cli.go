package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/config"
	"github.com/RevCBH/swarm/internal/logging"
	"github.com/RevCBH/swarm/internal/notify"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "swarm/skip-config"

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Configuration (loaded before each command runs)
	cfg        *config.Config
	configPath string
	envFile    string
	logCfg     logging.Config
	logger     *slog.Logger

	// Runtime state
	verbose bool
	output  string
	signals *SignalHandler

	// newClient builds the remote API client
	newClient func(cfg *config.Config) (JobAPI, error)

	// newNotifier builds the completion notifier for wait
	newNotifier func(cfg *config.Config) (notify.Notifier, error)

	// Version information
	versionInfo VersionInfo
}

// VersionInfo is stamped into the binary at build time.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new CLI application
func New() *App {
	app := &App{
		logger: logging.Discard(),
	}
	app.newClient = app.buildClient
	app.newNotifier = app.buildNotifier
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the command
// context.
func (a *App) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.signals = NewSignalHandler(cancel)
	a.signals.Start()
	defer a.signals.Stop()

	return a.annotateInterrupt(a.rootCmd.ExecuteContext(ctx))
}

// onInterrupt runs fn when SIGINT or SIGTERM arrives. It is a no-op when
// the app is driven without Execute, as in tests.
func (a *App) onInterrupt(fn func()) {
	if a.signals != nil {
		a.signals.OnShutdown(fn)
	}
}

// annotateInterrupt names the signal behind a cancellation.
func (a *App) annotateInterrupt(err error) error {
	if err == nil || a.signals == nil || !errors.Is(err, context.Canceled) {
		return err
	}
	if sig := a.signals.Received(); sig != nil {
		return &InterruptError{Signal: sig, Err: err}
	}
	return err
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "swarm",
		Short: "Launch and track remote coding-agent jobs",
		Long: `Swarm launches remote coding agents against your repositories,
follows their progress, and reports when they finish.

Results are printed as JSON on stdout; logs and errors go to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.loadConfig(cmd)
		},
	}

	// Add persistent flags
	flags := a.rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output (debug logging)")
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.swarm/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "Dotenv file to load before reading the environment")
	flags.StringVarP(&a.output, "output", "o", "", "Output format: json or table (default from config)")

	a.rootCmd.AddCommand(
		NewCreateCmd(a),
		NewListCmd(a),
		NewGetCmd(a),
		NewConversationCmd(a),
		NewFollowUpCmd(a),
		NewCancelCmd(a),
		NewDeleteCmd(a),
		NewMeCmd(a),
		NewModelsCmd(a),
		NewReposCmd(a),
		NewWaitCmd(a),
		NewWebhookCmd(a),
		NewVersionCmd(a),
	)
}

// loadConfig resolves configuration and builds the logger.
func (a *App) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{Path: a.configPath, EnvFile: a.envFile})
	if err != nil {
		return err
	}

	if a.output != "" {
		format := config.OutputFormat(a.output)
		if format != config.OutputJSON && format != config.OutputTable {
			return &UsageError{Message: fmt.Sprintf("--output must be json or table (got %q)", a.output)}
		}
		cfg.Output = format
	}

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	a.logCfg = logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
	}
	a.logger = logging.New(a.logCfg, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)
	if a.signals != nil {
		a.signals.SetLogger(a.logger)
	}

	a.cfg = cfg
	return nil
}
