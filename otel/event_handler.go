package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraskye/fmodel"
)

// WithEventTelemetry wraps an EventHandler, such as MaterializedView.Handle
// or SagaManager.Handle, with a span and event metrics.
func WithEventTelemetry[E, R any](next fmodel.EventHandler[E, R], opts ...Option) fmodel.EventHandler[E, R] {
	cfg := newConfig(opts)
	in := newInstruments(cfg)

	return func(ctx context.Context, event E) (R, error) {
		eventType := typeName(event)
		typeAttr := metric.WithAttributes(AttrEventType.String(eventType))

		ctx, span := in.tracer.Start(ctx, cfg.spanName(fmt.Sprintf("events.handle %s", eventType)),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(cfg.spanAttributes(ctx,
				AttrEventType.String(eventType),
				AttrIdentifier.String(fmodel.IdentifierOf(event)),
			)...),
		)
		defer span.End()

		startTime := time.Now()
		result, err := next(ctx, event)
		in.eventsDuration.Record(ctx, float64(time.Since(startTime).Milliseconds()), typeAttr)

		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			in.eventsFailed.Add(ctx, 1, typeAttr)
			return result, err
		}
		span.SetStatus(codes.Ok, "")
		in.eventsHandled.Add(ctx, 1, typeAttr)
		return result, nil
	}
}
