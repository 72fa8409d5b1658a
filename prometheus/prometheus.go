// Package prometheus records fmodel handler metrics with the Prometheus
// client library.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/terraskye/fmodel"
)

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultConflict = "conflict"
	resultError    = "error"
)

// Metrics holds the collectors shared by the decorators.
type Metrics struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
	commandInFlight *prometheus.GaugeVec
	eventDuration   *prometheus.HistogramVec
	eventsTotal     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fmodel_command_duration_seconds",
			Help:    "Command handling time in seconds",
			Buckets: defaultBuckets,
		}, []string{"command_type"}),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fmodel_commands_total",
			Help: "Total number of commands handled, by result",
		}, []string{"command_type", "result"}),

		commandInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fmodel_commands_in_flight",
			Help: "Number of commands currently being processed",
		}, []string{"command_type"}),

		eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fmodel_event_duration_seconds",
			Help:    "Event handling time in seconds",
			Buckets: defaultBuckets,
		}, []string{"event_type"}),

		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fmodel_events_total",
			Help: "Total number of events handled by views and sagas, by result",
		}, []string{"event_type", "result"}),
	}

	reg.MustRegister(
		m.commandDuration,
		m.commandsTotal,
		m.commandInFlight,
		m.eventDuration,
		m.eventsTotal,
	)

	return m
}

// WithCommandMetrics wraps next with duration, in-flight and result metrics.
// The result label is one of ok, rejected, conflict or error.
func WithCommandMetrics[C, R any](m *Metrics, next fmodel.CommandHandler[C, R]) fmodel.CommandHandler[C, R] {
	return func(ctx context.Context, cmd C) (R, error) {
		commandType := fmt.Sprintf("%T", cmd)

		inFlight := m.commandInFlight.WithLabelValues(commandType)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		result, err := next(ctx, cmd)
		m.commandDuration.WithLabelValues(commandType).Observe(time.Since(start).Seconds())
		m.commandsTotal.WithLabelValues(commandType, classify(err)).Inc()

		return result, err
	}
}

// WithEventMetrics wraps next with duration and result metrics.
func WithEventMetrics[E, R any](m *Metrics, next fmodel.EventHandler[E, R]) fmodel.EventHandler[E, R] {
	return func(ctx context.Context, event E) (R, error) {
		eventType := fmt.Sprintf("%T", event)

		start := time.Now()
		result, err := next(ctx, event)
		m.eventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		m.eventsTotal.WithLabelValues(eventType, classify(err)).Inc()

		return result, err
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, fmodel.ErrBusinessRuleViolation):
		return resultRejected
	case errors.Is(err, fmodel.ErrConcurrencyConflict):
		return resultConflict
	default:
		return resultError
	}
}
