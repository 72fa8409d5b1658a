package fmodel

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// CommandHandler handles a command of type C and returns a result of type R.
//
// The Handle methods of EventSourcedAggregate and StateStoredAggregate are
// CommandHandlers, which lets decorators (telemetry, logging, metrics, retry)
// wrap them without knowing which runner sits underneath:
//
//	var handle fmodel.CommandHandler[OrderCommand, []fmodel.Versioned[OrderEvent, uint64]] = aggregate.Handle
//	handle = fmodel.RetryOnConflict(handle, newBackOff)
type CommandHandler[C, R any] func(ctx context.Context, command C) (R, error)

// EventHandler handles an event of type E and returns a result of type R.
// MaterializedView.Handle and SagaManager.Handle are EventHandlers.
type EventHandler[E, R any] func(ctx context.Context, event E) (R, error)

// RetryOnConflict re-runs the whole fetch-decide-save cycle of next while it
// fails with ErrConcurrencyConflict, pacing attempts with a fresh BackOff
// from newBackOff per call. Any other error stops the retries immediately.
//
// The runners never retry on their own; wrapping them is opt-in.
//
// Usage:
//
//	handle := RetryOnConflict(aggregate.Handle, func() backoff.BackOff {
//	    return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
//	})
func RetryOnConflict[C, R any](next CommandHandler[C, R], newBackOff func() backoff.BackOff) CommandHandler[C, R] {
	return func(ctx context.Context, command C) (R, error) {
		return backoff.RetryWithData(func() (R, error) {
			result, err := next(ctx, command)
			if err != nil && !errors.Is(err, ErrConcurrencyConflict) {
				return result, backoff.Permanent(err)
			}
			return result, err
		}, backoff.WithContext(newBackOff(), ctx))
	}
}
