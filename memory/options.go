// Package memory provides in-process implementations of the fmodel
// repositories with optimistic concurrency. They are meant for tests, demos
// and single-process applications.
package memory

import "time"

type options struct {
	now func() time.Time
}

// Option configures a memory repository.
type Option func(*options)

// WithClock sets the clock used to stamp stored events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) *options {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
