package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Payload is the JSON structure sent to webhook endpoints and brokers
type Payload struct {
	Severity string            `json:"severity"`
	Job      string            `json:"job,omitempty"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
	SentAt   time.Time         `json:"sent_at"`
}

// NewPayload converts n to its wire form.
func NewPayload(n Notification) Payload {
	return Payload{
		Severity: string(n.Severity),
		Job:      n.Job,
		Title:    n.Title,
		Message:  n.Message,
		Context:  n.Context,
		SentAt:   time.Now().UTC(),
	}
}

// Webhook posts notifications to an HTTP endpoint as JSON
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook notifier with default HTTP client
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewWebhookWithClient creates a Webhook notifier with custom HTTP client
func NewWebhookWithClient(url string, client *http.Client) *Webhook {
	return &Webhook{
		url:    url,
		client: client,
	}
}

// Notify posts the notification as JSON to the webhook URL
func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(NewPayload(n))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Name returns "webhook"
func (w *Webhook) Name() string {
	return "webhook"
}
