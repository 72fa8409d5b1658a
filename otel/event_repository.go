package otel

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraskye/fmodel"
)

type telemetryRepository[C, E, V any] struct {
	next fmodel.EventRepository[C, E, V]
	cfg  *config
	in   *instruments
}

// WithEventRepositoryTelemetry wraps an EventRepository with client spans
// and load/append metrics.
func WithEventRepositoryTelemetry[C, E, V any](next fmodel.EventRepository[C, E, V], opts ...Option) fmodel.EventRepository[C, E, V] {
	cfg := newConfig(opts)
	return &telemetryRepository[C, E, V]{next: next, cfg: cfg, in: newInstruments(cfg)}
}

func (t *telemetryRepository[C, E, V]) FetchEvents(ctx context.Context, command C) ([]fmodel.Versioned[E, V], error) {
	opAttr := metric.WithAttributes(AttrOperation.String("fetch"))

	ctx, span := t.in.tracer.Start(ctx, "EventRepository.FetchEvents",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.cfg.spanAttributes(ctx,
			AttrOperation.String("fetch"),
			AttrIdentifier.String(fmodel.IdentifierOf(command)),
		)...),
	)
	defer span.End()

	start := time.Now()
	events, err := t.next.FetchEvents(ctx, command)
	t.in.repositoryDuration.Record(ctx, float64(time.Since(start).Milliseconds()), opAttr)

	if err != nil {
		t.in.repositoryErrors.Add(ctx, 1, opAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return events, err
	}

	t.in.eventsLoaded.Add(ctx, int64(len(events)))
	span.SetAttributes(AttrEventCount.Int(len(events)))
	return events, nil
}

func (t *telemetryRepository[C, E, V]) Save(ctx context.Context, events []E, expected *V) ([]fmodel.Versioned[E, V], error) {
	opAttr := metric.WithAttributes(AttrOperation.String("save"))

	var identifier string
	if len(events) > 0 {
		identifier = fmodel.IdentifierOf(events[0])
	}
	ctx, span := t.in.tracer.Start(ctx, "EventRepository.Save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.cfg.spanAttributes(ctx,
			AttrOperation.String("save"),
			AttrIdentifier.String(identifier),
			AttrEventCount.Int(len(events)),
		)...),
	)
	defer span.End()

	start := time.Now()
	saved, err := t.next.Save(ctx, events, expected)
	t.in.repositoryDuration.Record(ctx, float64(time.Since(start).Milliseconds()), opAttr)

	if err != nil {
		if errors.Is(err, fmodel.ErrConcurrencyConflict) {
			t.in.concurrencyConflicts.Add(ctx, 1, opAttr)
			span.AddEvent("concurrency_conflict")
		}
		t.in.repositoryErrors.Add(ctx, 1, opAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return saved, err
	}

	t.in.eventsAppended.Add(ctx, int64(len(saved)))
	return saved, nil
}
