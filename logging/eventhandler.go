package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terraskye/fmodel"
)

// WithEventLogging wraps an EventHandler, such as a materialized view or a
// saga manager, with debug logs around each event and an error log on failure.
func WithEventLogging[E, R any](logger *slog.Logger, next fmodel.EventHandler[E, R]) fmodel.EventHandler[E, R] {
	return func(ctx context.Context, event E) (R, error) {
		l := logger.With(
			"event", fmt.Sprintf("%T", event),
			"identifier", fmodel.IdentifierOf(event),
		)

		l.DebugContext(ctx, "event processing started")

		result, err := next(ctx, event)

		if err != nil {
			l.ErrorContext(ctx, "error processing event", "error", err)
		} else {
			l.DebugContext(ctx, "event processed successfully")
		}

		return result, err
	}
}
