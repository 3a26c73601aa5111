// Package webhook receives status-change deliveries from the remote job
// API and forwards terminal transitions to the configured notifier.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/events"
	"github.com/RevCBH/swarm/internal/notify"
)

const (
	// StatusPath receives status-change deliveries.
	StatusPath = "/webhooks/status"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Config holds receiver dependencies. Bus and Notifier are optional.
type Config struct {
	Secret   string
	Logger   *slog.Logger
	Bus      *events.Bus
	Notifier notify.Notifier
}

// Server verifies and dispatches webhook deliveries.
type Server struct {
	secret   string
	logger   *slog.Logger
	bus      *events.Bus
	notifier notify.Notifier
}

// NewServer creates a Server. The secret must meet the remote API's
// minimum webhook secret length.
func NewServer(cfg Config) (*Server, error) {
	if utf8.RuneCountInString(cfg.Secret) < api.MinWebhookSecretLength {
		return nil, fmt.Errorf("webhook secret: %w", api.ErrWebhookSecretTooShort)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		secret:   cfg.Secret,
		logger:   logger,
		bus:      cfg.Bus,
		notifier: cfg.Notifier,
	}, nil
}

// Router configures and returns the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "swarm-webhook",
		})
	})

	r.POST(StatusPath, s.handleStatus)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook receiver listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down webhook receiver")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown webhook receiver: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return
	}

	if !Verify(s.secret, body, c.GetHeader(SignatureHeader)) {
		s.bus.Emit(events.NewEvent(events.WebhookRejected, "").WithError(errors.New("invalid signature")))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var change StatusChange
	if err := json.Unmarshal(body, &change); err != nil {
		s.bus.Emit(events.NewEvent(events.WebhookRejected, "").WithError(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if change.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	job := change.Job()
	s.logger.Info("status change received",
		slog.String("job", change.ID),
		slog.String("event", change.Event),
		slog.String("status", change.Status),
	)
	s.bus.Emit(events.NewEvent(events.WebhookReceived, change.ID).
		WithStatus(change.Status).
		WithPayload(change))

	if job.Status.Terminal() && s.notifier != nil {
		if err := s.notifier.Notify(c.Request.Context(), notify.ForJob(job)); err != nil {
			s.logger.Warn("notification failed",
				slog.String("job", change.ID),
				slog.String("notifier", s.notifier.Name()),
				slog.Any("error", err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "id": change.ID})
}
