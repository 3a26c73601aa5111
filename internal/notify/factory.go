package notify

import (
	"fmt"
	"log/slog"
)

// Config holds notification configuration
type Config struct {
	Backends     []string
	SlackWebhook string
	WebhookURL   string
	AMQP         AMQPConfig
	Logger       *slog.Logger
}

// FromConfig creates a Notifier from configuration
func FromConfig(cfg Config) (Notifier, error) {
	var notifiers []Notifier

	for _, backend := range cfg.Backends {
		switch backend {
		case "terminal":
			notifiers = append(notifiers, NewTerminal())
		case "slack":
			if cfg.SlackWebhook == "" {
				return nil, fmt.Errorf("slack backend requires webhook URL")
			}
			notifiers = append(notifiers, NewSlack(cfg.SlackWebhook))
		case "webhook":
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook backend requires URL")
			}
			notifiers = append(notifiers, NewWebhook(cfg.WebhookURL))
		case "amqp":
			if cfg.AMQP.URL == "" {
				return nil, fmt.Errorf("amqp backend requires broker URL")
			}
			notifiers = append(notifiers, NewAMQP(cfg.AMQP, cfg.Logger))
		default:
			return nil, fmt.Errorf("unknown notify backend: %s", backend)
		}
	}

	if len(notifiers) == 0 {
		return NewTerminal(), nil
	}

	if len(notifiers) == 1 {
		return notifiers[0], nil
	}

	return NewMulti(notifiers...), nil
}

// Close releases n if it holds a connection.
func Close(n Notifier) error {
	if c, ok := n.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
