package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// SignalHandler cancels the command context on SIGINT or SIGTERM so that
// in-flight polls return their partial results.
type SignalHandler struct {
	signals  chan os.Signal
	shutdown chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
	logger   *slog.Logger

	mu         sync.Mutex
	onShutdown []func()
	received   os.Signal
}

// NewSignalHandler creates a signal handler with the given context cancel
func NewSignalHandler(cancel context.CancelFunc) *SignalHandler {
	return &SignalHandler{
		signals:    make(chan os.Signal, 1),
		shutdown:   make(chan struct{}),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		cancel:     cancel,
		logger:     slog.Default(),
		onShutdown: make([]func(), 0),
	}
}

// SetLogger replaces the logger used to report the received signal.
func (h *SignalHandler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// Start begins listening for signals
func (h *SignalHandler) Start() {
	h.StartWithNotify(true)
}

// StartWithNotify begins listening for signals. Pass false in unit tests to
// leave process-wide signal state alone.
func (h *SignalHandler) StartWithNotify(notify bool) {
	if notify {
		signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	}

	started := make(chan struct{})
	go func() {
		defer close(h.done)
		close(started)

		select {
		case sig := <-h.signals:
			h.mu.Lock()
			h.received = sig
			callbacks := make([]func(), len(h.onShutdown))
			copy(callbacks, h.onShutdown)
			h.mu.Unlock()

			h.logger.Info("interrupted, stopping", slog.String("signal", sig.String()))

			if h.cancel != nil {
				h.cancel()
			}
			for _, fn := range callbacks {
				fn()
			}
			close(h.shutdown)
		case <-h.stopCh:
		}
	}()

	<-started
}

// OnShutdown registers a callback to run on shutdown, after the context
// is cancelled. Callbacks run in registration order.
func (h *SignalHandler) OnShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onShutdown = append(h.onShutdown, fn)
}

// Received returns the signal that triggered shutdown, or nil.
func (h *SignalHandler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop unregisters the handler. It waits briefly for the listener goroutine
// so a shutdown already in progress can finish its callbacks.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	select {
	case <-h.done:
	case <-time.After(100 * time.Millisecond):
	}
}
