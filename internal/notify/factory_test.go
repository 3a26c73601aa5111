package notify

import (
	"testing"
)

func TestFromConfig_Empty(t *testing.T) {
	n, err := FromConfig(Config{})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if n.Name() != "terminal" {
		t.Errorf("expected default terminal, got %q", n.Name())
	}
}

func TestFromConfig_Backends(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"terminal", Config{Backends: []string{"terminal"}}, "terminal", false},
		{"slack", Config{Backends: []string{"slack"}, SlackWebhook: "https://hooks.slack.com/services/xxx"}, "slack", false},
		{"slack missing url", Config{Backends: []string{"slack"}}, "", true},
		{"webhook", Config{Backends: []string{"webhook"}, WebhookURL: "https://example.com/hook"}, "webhook", false},
		{"webhook missing url", Config{Backends: []string{"webhook"}}, "", true},
		{"amqp", Config{Backends: []string{"amqp"}, AMQP: AMQPConfig{URL: "amqp://localhost", Exchange: "x", RoutingKey: "k"}}, "amqp", false},
		{"amqp missing url", Config{Backends: []string{"amqp"}}, "", true},
		{"multi", Config{Backends: []string{"terminal", "slack"}, SlackWebhook: "https://hooks.slack.com/services/xxx"}, "multi", false},
		{"unknown", Config{Backends: []string{"pager"}}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := FromConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got notifier %q", n.Name())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Name() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, n.Name())
			}
		})
	}
}

func TestFromConfig_AMQPDoesNotDial(t *testing.T) {
	// Construction must succeed with no broker running.
	n, err := FromConfig(Config{
		Backends: []string{"amqp"},
		AMQP:     AMQPConfig{URL: "amqp://127.0.0.1:1/", Exchange: "x", RoutingKey: "k"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Close(n); err != nil {
		t.Errorf("closing an unused amqp notifier should be a no-op: %v", err)
	}
}
