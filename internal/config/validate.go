package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
	"unicode/utf8"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
	validBackends   = []string{"terminal", "slack", "webhook", "amqp"}
)

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
// A missing API key is not checked here; commands that reach the remote
// API report it themselves.
func validateConfig(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, &ValidationError{
			Field:   "api.base_url",
			Value:   cfg.API.BaseURL,
			Message: "must be an absolute URL",
		})
	}

	interval, err := time.ParseDuration(cfg.Poll.Interval)
	if err != nil {
		errs = append(errs, &ValidationError{
			Field:   "poll.interval",
			Value:   cfg.Poll.Interval,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if interval <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "poll.interval",
			Value:   cfg.Poll.Interval,
			Message: "must be positive",
		})
	}

	timeout, err := time.ParseDuration(cfg.Poll.Timeout)
	if err != nil {
		errs = append(errs, &ValidationError{
			Field:   "poll.timeout",
			Value:   cfg.Poll.Timeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if timeout < 0 {
		errs = append(errs, &ValidationError{
			Field:   "poll.timeout",
			Value:   cfg.Poll.Timeout,
			Message: "must not be negative",
		})
	}

	// Level is case-sensitive
	if !slices.Contains(validLogLevels, cfg.Logging.Level) {
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Value:   cfg.Logging.Level,
			Message: "must be one of: debug, info, warn, error",
		})
	}
	if !slices.Contains(validLogFormats, cfg.Logging.Format) {
		errs = append(errs, &ValidationError{
			Field:   "logging.format",
			Value:   cfg.Logging.Format,
			Message: "must be one of: console, json",
		})
	}

	for i, backend := range cfg.Notify.Backends {
		if !slices.Contains(validBackends, backend) {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("notify.backends[%d]", i),
				Value:   backend,
				Message: "must be one of: terminal, slack, webhook, amqp",
			})
		}
	}
	if slices.Contains(cfg.Notify.Backends, "slack") && cfg.Notify.SlackWebhook == "" {
		errs = append(errs, &ValidationError{
			Field:   "notify.slack_webhook",
			Value:   cfg.Notify.SlackWebhook,
			Message: "required when the slack backend is enabled",
		})
	}
	if slices.Contains(cfg.Notify.Backends, "webhook") && cfg.Notify.WebhookURL == "" {
		errs = append(errs, &ValidationError{
			Field:   "notify.webhook_url",
			Value:   cfg.Notify.WebhookURL,
			Message: "required when the webhook backend is enabled",
		})
	}
	if slices.Contains(cfg.Notify.Backends, "amqp") {
		if cfg.Notify.AMQP.URL == "" {
			errs = append(errs, &ValidationError{
				Field:   "notify.amqp.url",
				Value:   cfg.Notify.AMQP.URL,
				Message: "required when the amqp backend is enabled",
			})
		}
		if cfg.Notify.AMQP.RoutingKey == "" {
			errs = append(errs, &ValidationError{
				Field:   "notify.amqp.routing_key",
				Value:   cfg.Notify.AMQP.RoutingKey,
				Message: "must not be empty",
			})
		}
	}

	if cfg.Webhook.Addr == "" {
		errs = append(errs, &ValidationError{
			Field:   "webhook.addr",
			Value:   cfg.Webhook.Addr,
			Message: "must not be empty",
		})
	}
	// Secret is optional until `webhook serve` runs, but a short one is always wrong
	if n := utf8.RuneCountInString(cfg.Webhook.Secret); cfg.Webhook.Secret != "" && n < MinWebhookSecretLength {
		errs = append(errs, &ValidationError{
			Field:   "webhook.secret",
			Value:   fmt.Sprintf("<%d chars>", n),
			Message: fmt.Sprintf("must be at least %d characters", MinWebhookSecretLength),
		})
	}

	if cfg.Output != OutputJSON && cfg.Output != OutputTable {
		errs = append(errs, &ValidationError{
			Field:   "output",
			Value:   cfg.Output,
			Message: "must be one of: json, table",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
