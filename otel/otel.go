// Package otel instruments fmodel handlers and repositories with
// OpenTelemetry traces and metrics.
package otel

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/terraskye/fmodel"
)

// Semantic attribute keys following OpenTelemetry conventions
const (
	// Command attributes
	AttrCommandType = attribute.Key("fmodel.command.type")
	AttrIdentifier  = attribute.Key("fmodel.identifier")

	// Event attributes
	AttrEventType  = attribute.Key("fmodel.event.type")
	AttrEventCount = attribute.Key("fmodel.events.count")

	// Operation attributes
	AttrOperation = attribute.Key("fmodel.operation")
)

type instruments struct {
	tracer trace.Tracer

	commandsHandled  metric.Int64Counter
	commandsFailed   metric.Int64Counter
	commandsDuration metric.Float64Histogram
	commandsInFlight metric.Int64UpDownCounter

	eventsHandled  metric.Int64Counter
	eventsFailed   metric.Int64Counter
	eventsDuration metric.Float64Histogram

	eventsAppended     metric.Int64Counter
	eventsLoaded       metric.Int64Counter
	repositoryDuration metric.Float64Histogram
	repositoryErrors   metric.Int64Counter

	concurrencyConflicts metric.Int64Counter
	businessRejections   metric.Int64Counter
}

// newInstruments creates the tracer and instruments. Instrument creation
// errors are ignored; the API falls back to no-op instruments.
func newInstruments(cfg *config) *instruments {
	meter := cfg.MeterProvider.Meter(instrumentationName)
	in := &instruments{
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	in.commandsHandled, _ = meter.Int64Counter(
		"fmodel.commands.handled",
		metric.WithDescription("Total number of commands handled"),
		metric.WithUnit("{command}"),
	)
	in.commandsFailed, _ = meter.Int64Counter(
		"fmodel.commands.failed",
		metric.WithDescription("Number of failed commands"),
		metric.WithUnit("{command}"),
	)
	in.commandsDuration, _ = meter.Float64Histogram(
		"fmodel.commands.duration",
		metric.WithDescription("Command handling duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	in.commandsInFlight, _ = meter.Int64UpDownCounter(
		"fmodel.commands.in_flight",
		metric.WithDescription("Number of commands currently being processed"),
		metric.WithUnit("{command}"),
	)

	in.eventsHandled, _ = meter.Int64Counter(
		"fmodel.events.handled",
		metric.WithDescription("Number of events handled by views and sagas"),
		metric.WithUnit("{event}"),
	)
	in.eventsFailed, _ = meter.Int64Counter(
		"fmodel.events.failed",
		metric.WithDescription("Number of events whose handling failed"),
		metric.WithUnit("{event}"),
	)
	in.eventsDuration, _ = meter.Float64Histogram(
		"fmodel.events.duration",
		metric.WithDescription("Event handling duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)

	in.eventsAppended, _ = meter.Int64Counter(
		"fmodel.events.appended",
		metric.WithDescription("Number of events appended to streams"),
		metric.WithUnit("{event}"),
	)
	in.eventsLoaded, _ = meter.Int64Counter(
		"fmodel.events.loaded",
		metric.WithDescription("Number of events loaded from streams"),
		metric.WithUnit("{event}"),
	)
	in.repositoryDuration, _ = meter.Float64Histogram(
		"fmodel.repository.duration",
		metric.WithDescription("Repository operation duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	in.repositoryErrors, _ = meter.Int64Counter(
		"fmodel.repository.errors",
		metric.WithDescription("Number of failed repository operations"),
		metric.WithUnit("{error}"),
	)

	in.concurrencyConflicts, _ = meter.Int64Counter(
		"fmodel.concurrency.conflicts",
		metric.WithDescription("Number of concurrency conflicts"),
		metric.WithUnit("{conflict}"),
	)
	in.businessRejections, _ = meter.Int64Counter(
		"fmodel.commands.rejected",
		metric.WithDescription("Number of commands rejected by a decider"),
		metric.WithUnit("{command}"),
	)
	return in
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
