package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/fixtures"
	"github.com/terraskye/fmodel/logging"
	"github.com/terraskye/fmodel/memory"
)

func TestWithCommandLogging(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()

	aggregate := fmodel.NewEventSourcedAggregate(
		memory.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent](),
		fixtures.OrderDecider(),
	)
	handle := logging.WithCommandLogging(logrus.NewEntry(logger), aggregate.Handle)

	_, err := handle(ctx, fixtures.CreateOrder{OrderID: 1, CustomerName: "John Doe"})
	require.NoError(t, err)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Dispatch: fixtures.CreateOrder", entry.Message)
	assert.Equal(t, "order-1", entry.Data["identifier"])

	hook.Reset()
	_, err = handle(ctx, fixtures.CancelOrder{OrderID: 1})
	require.NoError(t, err)
	_, err = handle(ctx, fixtures.UpdateOrder{OrderID: 1})
	require.Error(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, "Dispatch rejected: fixtures.UpdateOrder", entries[2].Message)
	assert.ErrorIs(t, entries[2].Data[logrus.ErrorKey].(error), fixtures.ErrOrderCancelled)
}

func TestWithCommandLogging_Failure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	errDown := errors.New("database down")

	handle := logging.WithCommandLogging(logrus.NewEntry(logger), func(context.Context, fixtures.OrderCommand) (int, error) {
		return 0, errDown
	})
	_, err := handle(context.Background(), fixtures.CancelOrder{OrderID: 3})
	assert.Same(t, errDown, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "order-3", entry.Data["identifier"])
}

func TestWithEventLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	calls := 0
	handle := logging.WithEventLogging(logger, func(_ context.Context, event fixtures.OrderEvent) (int, error) {
		calls++
		if _, ok := event.(fixtures.OrderCancelled); ok {
			return 0, errors.New("projection failed")
		}
		return calls, nil
	})

	got, err := handle(context.Background(), fixtures.OrderCreated{OrderID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Contains(t, buf.String(), "event processed successfully")
	assert.Contains(t, buf.String(), "identifier=order-1")

	buf.Reset()
	_, err = handle(context.Background(), fixtures.OrderCancelled{OrderID: 1})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "projection failed")
}
