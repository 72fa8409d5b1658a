package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraskye/fmodel"
)

// WithCommandTelemetry wraps a CommandHandler with OpenTelemetry tracing and metrics.
//
// For each command it:
//  1. starts an internal span named after the command type, carrying the
//     command type and its identifier,
//  2. tracks the command in the in-flight gauge while next runs,
//  3. records the duration and one of handled, rejected, conflict or failed.
//
// A decider rejection (ErrBusinessRuleViolation) is an expected outcome: the
// span status stays Ok and a business_rule_violation event is added. A
// concurrency conflict adds a concurrency_conflict event and marks the span
// as failed.
//
// Example Usage:
//
//	handle := otel.WithCommandTelemetry(aggregate.Handle)
//	events, err := handle(ctx, cmd)
func WithCommandTelemetry[C, R any](next fmodel.CommandHandler[C, R], opts ...Option) fmodel.CommandHandler[C, R] {
	cfg := newConfig(opts)
	in := newInstruments(cfg)

	return func(ctx context.Context, cmd C) (R, error) {
		commandType := typeName(cmd)
		typeAttr := metric.WithAttributes(AttrCommandType.String(commandType))

		ctx, span := in.tracer.Start(ctx, cfg.spanName(fmt.Sprintf("command.handle %s", commandType)),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(cfg.spanAttributes(ctx,
				AttrCommandType.String(commandType),
				AttrIdentifier.String(fmodel.IdentifierOf(cmd)),
			)...),
		)
		defer span.End()

		in.commandsInFlight.Add(ctx, 1, typeAttr)
		defer in.commandsInFlight.Add(ctx, -1, typeAttr)

		startTime := time.Now()
		result, err := next(ctx, cmd)
		in.commandsDuration.Record(ctx, float64(time.Since(startTime).Milliseconds()), typeAttr)

		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
			in.commandsHandled.Add(ctx, 1, typeAttr)

		case errors.Is(err, fmodel.ErrBusinessRuleViolation):
			span.SetStatus(codes.Ok, fmt.Sprintf("business rule violation: %v", err))
			span.AddEvent("business_rule_violation", trace.WithAttributes(
				AttrCommandType.String(commandType),
				AttrIdentifier.String(fmodel.IdentifierOf(cmd)),
			))
			in.businessRejections.Add(ctx, 1, typeAttr)

		case errors.Is(err, fmodel.ErrConcurrencyConflict):
			span.AddEvent("concurrency_conflict", trace.WithAttributes(
				AttrIdentifier.String(fmodel.IdentifierOf(cmd)),
			))
			span.SetStatus(codes.Error, err.Error())
			in.concurrencyConflicts.Add(ctx, 1, typeAttr)
			in.commandsFailed.Add(ctx, 1, typeAttr)

		default:
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			in.commandsFailed.Add(ctx, 1, typeAttr)
		}

		return result, err
	}
}
