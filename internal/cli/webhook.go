package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/events"
	"github.com/RevCBH/swarm/internal/notify"
	"github.com/RevCBH/swarm/internal/webhook"
)

// NewWebhookCmd creates the webhook command group
func NewWebhookCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Receive and sign job status webhooks",
	}

	cmd.AddCommand(
		NewWebhookServeCmd(app),
		NewWebhookSignCmd(app),
	)

	return cmd
}

// WebhookServeOptions holds flags for the webhook serve command
type WebhookServeOptions struct {
	Addr     string
	Secret   string
	NoNotify bool
	Events   bool
}

// NewWebhookServeCmd creates the webhook serve command
func NewWebhookServeCmd(app *App) *cobra.Command {
	opts := WebhookServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a receiver for job status-change deliveries",
		Long: `Run an HTTP receiver for status-change webhooks registered with
create --webhook-url. Each delivery's X-Webhook-Signature is checked against
the shared secret; terminal statuses are forwarded to the configured
notification backends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.Addr = app.cfg.Webhook.Addr
			}
			if opts.Secret == "" {
				opts.Secret = app.cfg.Webhook.Secret
			}
			return app.RunWebhookServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config, :8787)")
	cmd.Flags().StringVar(&opts.Secret, "secret", "", "Shared signing secret (default SWARM_WEBHOOK_SECRET)")
	cmd.Flags().BoolVar(&opts.NoNotify, "no-notify", false, "Log deliveries without notifying")
	cmd.Flags().BoolVar(&opts.Events, "events", false, "Stream received deliveries as JSON lines on stderr")

	return cmd
}

// RunWebhookServe serves until the command context is cancelled.
func (a *App) RunWebhookServe(cmd *cobra.Command, opts WebhookServeOptions) error {
	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	bus := events.NewBus(eventBusCapacity)
	defer bus.Close()
	bus.Subscribe(events.SlogHandler(a.logger))
	if opts.Events {
		bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(cmd.ErrOrStderr()), a.logger))
	}

	var notifier notify.Notifier
	if !opts.NoNotify {
		n, err := a.newNotifier(a.cfg)
		if err != nil {
			return fmt.Errorf("build notifier: %w", err)
		}
		defer func() {
			if err := notify.Close(n); err != nil {
				a.logger.Debug("closing notifier", slog.Any("error", err))
			}
		}()
		notifier = n
	}

	srv, err := webhook.NewServer(webhook.Config{
		Secret:   opts.Secret,
		Logger:   a.logger,
		Bus:      bus,
		Notifier: notifier,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context(), opts.Addr)
}

// NewWebhookSignCmd creates the webhook sign command
func NewWebhookSignCmd(app *App) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signature header value for a body read from stdin",
		Long: `Print the X-Webhook-Signature value for the body read from stdin,
for testing a receiver by hand:

  body='{"event":"statusChange","id":"bc_1","status":"FINISHED"}'
  echo -n "$body" | swarm webhook sign`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = app.cfg.Webhook.Secret
			}
			if strings.TrimSpace(secret) == "" {
				return &UsageError{Message: "no secret: pass --secret or set SWARM_WEBHOOK_SECRET"}
			}
			body, err := readAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), webhook.Sign(secret, body))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Shared signing secret (default SWARM_WEBHOOK_SECRET)")

	return cmd
}
