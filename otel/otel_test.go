package otel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/fixtures"
	"github.com/terraskye/fmodel/memory"
	"github.com/terraskye/fmodel/otel"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	opts   []otel.Option
}

func newTelemetry() *telemetry {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	return &telemetry{
		spans:  spans,
		reader: reader,
		opts: []otel.Option{
			otel.WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))),
			otel.WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))),
		},
	}
}

// counter sums every data point of the named Int64 counter.
func (tm *telemetry) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tm.reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestWithCommandTelemetry(t *testing.T) {
	ctx := context.Background()
	tm := newTelemetry()

	aggregate := fmodel.NewEventSourcedAggregate(
		memory.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent](),
		fixtures.OrderDecider(),
	)
	handle := otel.WithCommandTelemetry(aggregate.Handle, tm.opts...)

	_, err := handle(ctx, fixtures.CreateOrder{OrderID: 1, CustomerName: "John Doe"})
	require.NoError(t, err)
	_, err = handle(ctx, fixtures.CancelOrder{OrderID: 1})
	require.NoError(t, err)
	_, err = handle(ctx, fixtures.UpdateOrder{OrderID: 1})
	require.ErrorIs(t, err, fixtures.ErrOrderCancelled)

	spans := tm.spans.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "command.handle fixtures.CreateOrder", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	rejected := spans[2]
	assert.Equal(t, codes.Ok, rejected.Status().Code, "rejections are expected outcomes")
	require.Len(t, rejected.Events(), 1)
	assert.Equal(t, "business_rule_violation", rejected.Events()[0].Name)

	var identifier string
	for _, attr := range spans[1].Attributes() {
		if attr.Key == otel.AttrIdentifier {
			identifier = attr.Value.AsString()
		}
	}
	assert.Equal(t, "order-1", identifier)

	assert.Equal(t, int64(2), tm.counter(t, "fmodel.commands.handled"))
	assert.Equal(t, int64(1), tm.counter(t, "fmodel.commands.rejected"))
	assert.Equal(t, int64(0), tm.counter(t, "fmodel.commands.failed"))
	assert.Equal(t, int64(0), tm.counter(t, "fmodel.commands.in_flight"))
}

func TestWithCommandTelemetry_Failures(t *testing.T) {
	ctx := context.Background()
	tm := newTelemetry()
	errDown := errors.New("database down")

	conflict := otel.WithCommandTelemetry(func(context.Context, fixtures.OrderCommand) (int, error) {
		return 0, fmodel.NewVersionConflictError[uint64]("order-1", nil, nil)
	}, tm.opts...)
	broken := otel.WithCommandTelemetry(func(context.Context, fixtures.OrderCommand) (int, error) {
		return 0, errDown
	}, append(tm.opts, otel.WithOperation("orders.broken"))...)

	_, err := conflict(ctx, fixtures.CancelOrder{OrderID: 1})
	assert.ErrorIs(t, err, fmodel.ErrConcurrencyConflict)
	_, err = broken(ctx, fixtures.CancelOrder{OrderID: 1})
	assert.Same(t, errDown, err)

	spans := tm.spans.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "concurrency_conflict", spans[0].Events()[0].Name)
	assert.Equal(t, "orders.broken", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	assert.Equal(t, int64(1), tm.counter(t, "fmodel.concurrency.conflicts"))
	assert.Equal(t, int64(2), tm.counter(t, "fmodel.commands.failed"))
}

func TestWithEventTelemetry(t *testing.T) {
	ctx := context.Background()
	tm := newTelemetry()

	view := fmodel.NewMaterializedView(
		memory.NewViewStateRepository[fixtures.OrderEvent, fixtures.OrderViewState](),
		fixtures.OrderView(),
	)
	handle := otel.WithEventTelemetry(view.Handle, tm.opts...)

	_, err := handle(ctx, fixtures.OrderCreated{OrderID: 1})
	require.NoError(t, err)

	spans := tm.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "events.handle fixtures.OrderCreated", spans[0].Name())
	assert.Equal(t, int64(1), tm.counter(t, "fmodel.events.handled"))
}

func TestWithEventRepositoryTelemetry(t *testing.T) {
	ctx := context.Background()
	tm := newTelemetry()

	repo := otel.WithEventRepositoryTelemetry(
		fmodel.EventRepository[fixtures.OrderCommand, fixtures.OrderEvent, uint64](memory.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent]()),
		tm.opts...,
	)
	aggregate := fmodel.NewEventSourcedAggregate(repo, fixtures.OrderDecider())

	_, err := aggregate.Handle(ctx, fixtures.CreateOrder{OrderID: 1})
	require.NoError(t, err)
	_, err = aggregate.Handle(ctx, fixtures.CancelOrder{OrderID: 1})
	require.NoError(t, err)
	_, err = repo.Save(ctx, []fixtures.OrderEvent{fixtures.OrderCancelled{OrderID: 1}}, nil)
	require.ErrorIs(t, err, fmodel.ErrConcurrencyConflict)

	names := make([]string, 0)
	for _, span := range tm.spans.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{
		"EventRepository.FetchEvents", "EventRepository.Save",
		"EventRepository.FetchEvents", "EventRepository.Save",
		"EventRepository.Save",
	}, names)

	assert.Equal(t, int64(2), tm.counter(t, "fmodel.events.appended"))
	assert.Equal(t, int64(1), tm.counter(t, "fmodel.events.loaded"))
	assert.Equal(t, int64(1), tm.counter(t, "fmodel.concurrency.conflicts"))
	assert.Equal(t, int64(1), tm.counter(t, "fmodel.repository.errors"))
}
