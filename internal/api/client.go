// Package api is a typed client for the remote agent job API.
//
// Every method performs at most one HTTP round-trip and never retries.
// Failures come back as *ValidationError (before any I/O), *TransportError,
// or *APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public endpoint of the remote job API.
const DefaultBaseURL = "https://api.cursor.com"

// Client issues requests against the remote job API. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: "swarm/dev",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateJob launches a new job. The request is validated locally first;
// an invalid request never reaches the network.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var job Job
	ok, err := c.do(ctx, http.MethodPost, "/v0/agents", nil, req, &job)
	if err != nil || !ok {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns one page of jobs, newest first.
func (c *Client) ListJobs(ctx context.Context, opts ListOptions) (*JobPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	var page JobPage
	ok, err := c.do(ctx, http.MethodGet, "/v0/agents", q, nil, &page)
	if err != nil || !ok {
		return nil, err
	}
	return &page, nil
}

// GetJob fetches the current snapshot of a job.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var job Job
	ok, err := c.do(ctx, http.MethodGet, "/v0/agents/"+url.PathEscape(id), nil, nil, &job)
	if err != nil || !ok {
		return nil, err
	}
	return &job, nil
}

// GetConversation fetches the ordered message transcript of a job.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var conv Conversation
	ok, err := c.do(ctx, http.MethodGet, "/v0/agents/"+url.PathEscape(id)+"/conversation", nil, nil, &conv)
	if err != nil || !ok {
		return nil, err
	}
	return &conv, nil
}

// SendFollowUp adds an instruction to an existing job.
func (c *Client) SendFollowUp(ctx context.Context, id string, req FollowUpRequest) (*Ack, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPost, "/v0/agents/"+url.PathEscape(id)+"/followup", req)
}

// Cancel stops a running job.
func (c *Client) Cancel(ctx context.Context, id string) (*Ack, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPost, "/v0/agents/"+url.PathEscape(id)+"/stop", nil)
}

// Delete removes a job. A no-content response is an empty Ack.
func (c *Client) Delete(ctx context.Context, id string) (*Ack, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodDelete, "/v0/agents/"+url.PathEscape(id), nil)
}

// AccountInfo describes the API key in use.
func (c *Client) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	ok, err := c.do(ctx, http.MethodGet, "/v0/me", nil, nil, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

// ListModels returns the model selectors CreateJob accepts.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	var models ModelList
	ok, err := c.do(ctx, http.MethodGet, "/v0/models", nil, nil, &models)
	if err != nil || !ok {
		return nil, err
	}
	return &models, nil
}

// ListRepositories returns the repositories connected to the account.
func (c *Client) ListRepositories(ctx context.Context) (*RepositoryList, error) {
	var repos RepositoryList
	ok, err := c.do(ctx, http.MethodGet, "/v0/repositories", nil, nil, &repos)
	if err != nil || !ok {
		return nil, err
	}
	return &repos, nil
}

func (c *Client) ack(ctx context.Context, method, path string, body any) (*Ack, error) {
	var a Ack
	ok, err := c.do(ctx, method, path, nil, body, &a)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

// do performs one request and decodes a success body into out.
// It returns false with a nil error when a success body is present but
// unparsable; an empty success body decodes as the zero value.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (bool, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
		slog.String("request_id", req.Header.Get("X-Request-Id")),
	)

	trimmed := bytes.TrimSpace(raw)
	var parsed any
	if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &parsed); err != nil {
			parsed = nil
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, parsed, trimmed),
			Body:       parsed,
		}
	}

	if len(trimmed) == 0 {
		return true, nil
	}
	if parsed == nil {
		return false, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, nil
	}
	return true, nil
}

// errorMessage picks the most specific human-readable message: a message
// field in the body, then the raw body, then a generic phrase.
func errorMessage(status int, parsed any, raw []byte) string {
	if m, ok := parsed.(map[string]any); ok {
		if s, ok := m["message"].(string); ok && s != "" {
			return s
		}
		switch e := m["error"].(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if s, ok := e["message"].(string); ok && s != "" {
				return s
			}
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}
