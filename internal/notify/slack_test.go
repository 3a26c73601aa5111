package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlack_Notify(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type: application/json")
		}
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	slack := NewSlack(server.URL)
	err := slack.Notify(context.Background(), Notification{
		Severity: SeverityCritical,
		Job:      "bc-42",
		Title:    "Job bc-42 FAILED",
		Message:  "tests did not pass",
		Context:  map[string]string{"repository": "github.com/acme/api"},
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	text, ok := receivedPayload["text"].(string)
	if !ok || !strings.Contains(text, "[bc-42]") {
		t.Errorf("expected job in text field, got %v", receivedPayload["text"])
	}
	blocks, ok := receivedPayload["blocks"].([]any)
	if !ok || len(blocks) != 2 {
		t.Errorf("expected section and context blocks, got %v", receivedPayload["blocks"])
	}
}

func TestSlack_NotifyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	slack := NewSlackWithClient(server.URL, server.Client())
	err := slack.Notify(context.Background(), Notification{
		Severity: SeverityInfo,
		Title:    "Test",
		Message:  "Test message",
	})

	if err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestSlack_Name(t *testing.T) {
	slack := NewSlack("http://example.com")
	if slack.Name() != "slack" {
		t.Errorf("expected 'slack', got %q", slack.Name())
	}
}
