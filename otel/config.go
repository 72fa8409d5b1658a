package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// config holds the options for instrumenting a handler or repository.
type config struct {
	// Operation overrides the span name. The default is derived from the
	// command or event type.
	Operation string

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	// Attributes holds the default attributes for each span created by this middleware.
	Attributes []attribute.KeyValue

	// GetAttributes is an optional function that can extract trace attributes
	// from the context and add them to the span.
	GetAttributes func(ctx context.Context) []attribute.KeyValue
}

// Option configures a telemetry decorator.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithOperation sets the span name.
func WithOperation(operation string) Option {
	return optionFunc(func(o *config) {
		o.Operation = operation
	})
}

// WithTracerProvider sets the provider spans are started from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return optionFunc(func(o *config) {
		o.TracerProvider = tp
	})
}

// WithMeterProvider sets the provider instruments are created from. The
// global provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return optionFunc(func(o *config) {
		o.MeterProvider = mp
	})
}

// WithAttributes sets the default attributes for the spans created by the decorator.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return optionFunc(func(o *config) {
		o.Attributes = attrs
	})
}

// WithAttributeGetter extracts additional attributes from the context.
func WithAttributeGetter(fn func(ctx context.Context) []attribute.KeyValue) Option {
	return optionFunc(func(o *config) {
		o.GetAttributes = fn
	})
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt.apply(c)
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}
	if c.MeterProvider == nil {
		c.MeterProvider = otel.GetMeterProvider()
	}
	return c
}

func (c *config) spanName(fallback string) string {
	if c.Operation != "" {
		return c.Operation
	}
	return fallback
}

func (c *config) spanAttributes(ctx context.Context, attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(c.Attributes)+len(attrs))
	out = append(out, c.Attributes...)
	out = append(out, attrs...)
	if c.GetAttributes != nil {
		out = append(out, c.GetAttributes(ctx)...)
	}
	return out
}
