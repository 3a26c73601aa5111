package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitShutdown(t *testing.T, h *SignalHandler) {
	t.Helper()
	select {
	case <-h.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete in time")
	}
}

func TestSignalHandler_CancelsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := NewSignalHandler(cancel)
	handler.StartWithNotify(false)
	defer handler.Stop()

	handler.signals <- syscall.SIGINT
	waitShutdown(t, handler)

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("context should be cancelled on signal")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, syscall.SIGINT, handler.Received())
}

func TestSignalHandler_CallbacksInOrder(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := NewSignalHandler(cancel)

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		handler.OnShutdown(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	handler.StartWithNotify(false)
	handler.signals <- syscall.SIGTERM
	waitShutdown(t, handler)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSignalHandler_LogsSignal(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	handler := NewSignalHandler(cancel)
	handler.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	handler.StartWithNotify(false)

	handler.signals <- syscall.SIGTERM
	waitShutdown(t, handler)

	assert.Contains(t, buf.String(), "interrupted")
	assert.Contains(t, buf.String(), "terminated")
}

func TestSignalHandler_StopWithoutSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := NewSignalHandler(cancel)
	handler.StartWithNotify(false)
	handler.Stop()
	handler.Stop()

	require.NoError(t, ctx.Err(), "Stop must not cancel the context")
	assert.Nil(t, handler.Received())
}

func TestApp_InterruptNamesSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := New()
	app.signals = NewSignalHandler(cancel)
	app.signals.StartWithNotify(false)
	defer app.signals.Stop()

	var quit sync.WaitGroup
	quit.Add(1)
	app.onInterrupt(quit.Done)

	app.signals.signals <- syscall.SIGTERM
	waitShutdown(t, app.signals)
	quit.Wait()

	err := app.annotateInterrupt(fmt.Errorf("waiting: %w", ctx.Err()))
	var interrupt *InterruptError
	require.True(t, errors.As(err, &interrupt))
	assert.Equal(t, syscall.SIGTERM, interrupt.Signal)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitFailure, ExitCode(err))

	body := Classify(err)
	assert.Equal(t, "cancelled", body.Kind)
	assert.Contains(t, body.Message, "interrupted by terminated")
	assert.Contains(t, body.Guidance, "terminated")
}

func TestApp_AnnotateInterruptWithoutSignal(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := New()
	assert.ErrorIs(t, app.annotateInterrupt(context.Canceled), context.Canceled)
	assert.NoError(t, app.annotateInterrupt(nil))

	app.signals = NewSignalHandler(cancel)
	other := errors.New("boom")
	assert.Same(t, other, app.annotateInterrupt(other))

	err := app.annotateInterrupt(context.Canceled)
	var interrupt *InterruptError
	assert.False(t, errors.As(err, &interrupt))
	assert.Equal(t, "cancelled", Classify(err).Kind)

	// Without Execute there is no handler to register with.
	New().onInterrupt(func() { t.Fatal("unexpected callback") })
}
