// Package poll runs a readiness check repeatedly with bounded attempts and
// backoff, exposing the run as a cancellable task.
package poll

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	// ErrExhausted is returned when the check never reported ready.
	ErrExhausted = errors.New("poll: attempts exhausted")

	// ErrCanceled is returned when the task was canceled before completion.
	ErrCanceled = errors.New("poll: canceled")
)

// Config bounds a polling run.
type Config struct {
	// Attempts is the maximum number of check calls. Values below 1 mean 1.
	Attempts int
	// Interval is the wait before the second attempt.
	Interval time.Duration
	// Backoff multiplies the wait after each attempt. Values below 1 mean 1.
	Backoff float64
	// MaxInterval caps the wait. Zero means no cap.
	MaxInterval time.Duration
}

// Check tests readiness once. It returns ready=true with the value when
// done; a non-nil error aborts the run.
type Check[T any] func(ctx context.Context) (value T, ready bool, err error)

// Task is a running poll.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu       sync.Mutex
	value    T
	err      error
	attempts int
}

// Start begins polling in a new goroutine.
func Start[T any](ctx context.Context, cfg Config, check Check[T]) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{done: make(chan struct{}), cancel: cancel}
	go t.run(ctx, cfg, check)
	return t
}

// Run polls synchronously and returns the check's value.
func Run[T any](ctx context.Context, cfg Config, check Check[T]) (T, error) {
	return Start(ctx, cfg, check).Wait()
}

// errNotReady makes backoff schedule another attempt.
var errNotReady = errors.New("poll: not ready")

func schedule(cfg Config) backoff.BackOff {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(cfg.Interval)
	if cfg.Backoff > 1 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = cfg.Interval
		eb.Multiplier = cfg.Backoff
		eb.RandomizationFactor = 0
		eb.MaxElapsedTime = 0
		eb.MaxInterval = cfg.MaxInterval
		if eb.MaxInterval <= 0 {
			eb.MaxInterval = time.Duration(math.MaxInt64)
		}
		b = eb
	} else if cfg.MaxInterval > 0 && cfg.Interval > cfg.MaxInterval {
		b = backoff.NewConstantBackOff(cfg.MaxInterval)
	}
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}

func (t *Task[T]) run(ctx context.Context, cfg Config, check Check[T]) {
	defer close(t.done)
	defer t.cancel()

	calls := 0
	v, err := backoff.RetryWithData(func() (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(err)
		}
		calls++
		t.setAttempts(calls)
		v, ready, err := check(ctx)
		if err != nil {
			return zero, backoff.Permanent(err)
		}
		if !ready {
			return zero, errNotReady
		}
		return v, nil
	}, backoff.WithContext(schedule(cfg), ctx))

	switch {
	case err == nil:
		t.mu.Lock()
		t.value = v
		t.mu.Unlock()
	case errors.Is(err, errNotReady):
		t.finish(ErrExhausted)
	default:
		t.finish(err)
	}
}

func (t *Task[T]) setAttempts(n int) {
	t.mu.Lock()
	t.attempts = n
	t.mu.Unlock()
}

func (t *Task[T]) finish(err error) {
	if errors.Is(err, context.Canceled) {
		err = ErrCanceled
	}
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Cancel stops the task. The check in flight, if any, sees a canceled
// context; Wait returns ErrCanceled.
func (t *Task[T]) Cancel() { t.cancel() }

// Done is closed when the task has finished.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its result.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.err
}

// Attempts returns the number of check calls made so far.
func (t *Task[T]) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}
