package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"
)

// Slack posts notifications to a Slack incoming-webhook URL
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack notifier with default HTTP client
func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSlackWithClient creates a Slack notifier with custom HTTP client
func NewSlackWithClient(webhookURL string, client *http.Client) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     client,
	}
}

// Notify posts the notification to Slack
func (s *Slack) Notify(ctx context.Context, n Notification) error {
	emoji := map[Severity]string{
		SeverityInfo:     ":white_check_mark:",
		SeverityWarning:  ":warning:",
		SeverityCritical: ":rotating_light:",
	}[n.Severity]

	keys := make([]string, 0, len(n.Context))
	for k := range n.Context {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var contextFields []map[string]any
	for _, k := range keys {
		contextFields = append(contextFields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s:* %s", k, n.Context[k]),
		})
	}

	blocks := []map[string]any{
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*%s*\n%s", n.Title, n.Message),
			},
		},
	}

	// Slack rejects context blocks with more than 10 elements
	if len(contextFields) > 10 {
		contextFields = contextFields[:10]
	}
	if len(contextFields) > 0 {
		blocks = append(blocks, map[string]any{
			"type":     "context",
			"elements": contextFields,
		})
	}

	text := fmt.Sprintf("%s %s", emoji, n.Title)
	if n.Job != "" {
		text = fmt.Sprintf("%s *[%s]* %s", emoji, n.Job, n.Title)
	}
	payload := map[string]any{
		"text":   text,
		"blocks": blocks,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Name returns "slack"
func (s *Slack) Name() string {
	return "slack"
}
