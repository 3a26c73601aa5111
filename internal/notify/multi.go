package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Multi wraps multiple notifiers and fans out to all of them
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a Multi notifier that sends to all provided backends
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Notify sends the notification to all backends concurrently.
// Every backend is attempted; failures are joined and tagged with the
// backend name.
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	if len(m.notifiers) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, notifier := range m.notifiers {
		wg.Add(1)
		go func(notifier Notifier) {
			defer wg.Done()
			if err := notifier.Notify(ctx, n); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
				mu.Unlock()
			}
		}(notifier)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Close releases any backend that holds a connection.
func (m *Multi) Close() error {
	var errs []error
	for _, notifier := range m.notifiers {
		if c, ok := notifier.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Name returns "multi"
func (m *Multi) Name() string {
	return "multi"
}
