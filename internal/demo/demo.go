// Package demo wires the order domain to the repositories and decorators
// and runs an order through its lifecycle.
package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/codec"
	"github.com/terraskye/fmodel/fixtures"
	"github.com/terraskye/fmodel/logging"
	"github.com/terraskye/fmodel/memory"
	"github.com/terraskye/fmodel/natskv"
	"github.com/terraskye/fmodel/otel"
	"github.com/terraskye/fmodel/prometheus"
	"github.com/terraskye/fmodel/sqlite"
)

type (
	orderEvents   = []fmodel.Versioned[fixtures.OrderEvent, uint64]
	orderView     = fmodel.Versioned[fixtures.OrderViewState, uint64]
	followUp      = fmodel.Sum[fixtures.CreateShipment, fixtures.NotifyCustomer]
	eventRepo     = fmodel.EventRepository[fixtures.OrderCommand, fixtures.OrderEvent, uint64]
	viewStateRepo = fmodel.ViewStateRepository[fixtures.OrderEvent, fixtures.OrderViewState, uint64]
)

// Result is what one Run produced.
type Result struct {
	Events  orderEvents
	View    orderView
	Actions []followUp
}

// OrderEvents returns the codec the durable backends store order events with.
func OrderEvents() *codec.Registry[fixtures.OrderEvent] {
	r := codec.NewRegistry[fixtures.OrderEvent]()
	codec.Register[fixtures.OrderEvent, fixtures.OrderCreated](r, fixtures.OrderCreated{}.EventType())
	codec.Register[fixtures.OrderEvent, fixtures.OrderUpdated](r, fixtures.OrderUpdated{}.EventType())
	codec.Register[fixtures.OrderEvent, fixtures.OrderCancelled](r, fixtures.OrderCancelled{}.EventType())
	return r
}

// Run creates, updates and cancels order 1. Accepted events are published
// on an in-memory bus whose subscribers project the order view and feed the
// shipment and notification sagas.
func Run(ctx context.Context, cfg Config, logger *logrus.Logger, reg prom.Registerer) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	log := logger.WithField("backend", cfg.Backend)

	events, views, closeAll, err := openRepositories(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	defer closeAll()

	metrics := prometheus.NewMetrics(reg)
	eventLogger := slog.New(slog.NewTextHandler(logger.Out, &slog.HandlerOptions{Level: slogLevel(logger.GetLevel())}))

	aggregate := fmodel.NewEventSourcedAggregate(otel.WithEventRepositoryTelemetry(events), fixtures.OrderDecider())
	var handleCommand fmodel.CommandHandler[fixtures.OrderCommand, orderEvents] = aggregate.Handle
	handleCommand = otel.WithCommandTelemetry(handleCommand)
	handleCommand = prometheus.WithCommandMetrics(metrics, handleCommand)
	handleCommand = logging.WithCommandLogging(log, handleCommand)
	handleCommand = fmodel.RetryOnConflict(handleCommand, func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.Retries)
	})

	view := fmodel.NewMaterializedView(views, fixtures.OrderView())
	var project fmodel.EventHandler[fixtures.OrderEvent, orderView] = view.Handle
	project = otel.WithEventTelemetry(project)
	project = prometheus.WithEventMetrics(metrics, project)
	project = logging.WithEventLogging(eventLogger, project)

	publisher := memory.NewActionPublisher[followUp](16)
	defer publisher.Close()
	sagas := fmodel.NewSagaManager[fixtures.OrderEvent, followUp](publisher, fmodel.MergeSagas(fixtures.ShipmentSaga(), fixtures.NotificationSaga()))
	var react fmodel.EventHandler[fixtures.OrderEvent, []followUp] = sagas.Handle
	react = logging.WithEventLogging(eventLogger, react)

	bus := memory.NewEventBus[fixtures.OrderEvent](16)
	defer bus.Close()
	if err := bus.Subscribe(ctx, "order-view", nil, func(ctx context.Context, event fixtures.OrderEvent) error {
		_, err := project(ctx, event)
		return err
	}); err != nil {
		return Result{}, err
	}
	if err := bus.Subscribe(ctx, "order-sagas", nil, func(ctx context.Context, event fixtures.OrderEvent) error {
		_, err := react(ctx, event)
		return err
	}); err != nil {
		return Result{}, err
	}

	var result Result
	for _, command := range []fixtures.OrderCommand{
		fixtures.CreateOrder{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1", "Item 2"}},
		fixtures.UpdateOrder{OrderID: 1, NewItems: []string{"Item 3", "Item 4"}},
		fixtures.CancelOrder{OrderID: 1},
	} {
		saved, err := handleCommand(ctx, command)
		if err != nil {
			return result, fmt.Errorf("handle %T: %w", command, err)
		}
		result.Events = append(result.Events, saved...)

		for _, event := range saved {
			if err := bus.Dispatch(ctx, event.Value); err != nil {
				return result, err
			}
		}
	}

	// drain subscribers before reading the projection
	_ = bus.Close()
	if err, ok := <-bus.Errors(); ok {
		return result, err
	}

	view, err := views.FetchState(ctx, fixtures.OrderCreated{OrderID: 1})
	if err != nil {
		return result, fmt.Errorf("fetch order view: %w", err)
	}
	if view == nil {
		return result, fmt.Errorf("order view was not projected")
	}
	result.View = *view
	result.Actions = publisher.Published()

	log.WithFields(logrus.Fields{
		"events":  len(result.Events),
		"actions": len(result.Actions),
		"items":   result.View.Value.Items,
	}).Info("order lifecycle complete")
	return result, nil
}

func openRepositories(ctx context.Context, cfg Config) (eventRepo, viewStateRepo, func(), error) {
	var (
		events  eventRepo
		views   viewStateRepo
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}
	viewCodec := codec.JSON[fixtures.OrderViewState]("OrderViewState")

	switch cfg.Backend {
	case BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, store.Close)
		events = sqlite.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent](store, OrderEvents())
		views = sqlite.NewViewStateRepository[fixtures.OrderEvent, fixtures.OrderViewState](store, "order_view", viewCodec)
	default:
		events = memory.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent]()
		views = memory.NewViewStateRepository[fixtures.OrderEvent, fixtures.OrderViewState]()
	}

	if cfg.NATSURL != "" {
		bucket, err := natskv.Open(ctx, natskv.Config{Connect: natskv.ConnectURL(cfg.NATSURL), Bucket: cfg.NATSBucket})
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, bucket.Close)
		views = natskv.NewViewStateRepository[fixtures.OrderEvent, fixtures.OrderViewState](bucket, viewCodec)
	}

	return events, views, closeAll, nil
}

func slogLevel(level logrus.Level) slog.Level {
	switch {
	case level >= logrus.DebugLevel:
		return slog.LevelDebug
	case level == logrus.InfoLevel:
		return slog.LevelInfo
	case level == logrus.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
