package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrBusClosed = errors.New("event bus is closed")

type subscriber[E any] struct {
	name    string
	filter  func(E) bool
	handler func(ctx context.Context, event E) error
	events  chan E
	done    chan struct{}
	cancel  context.CancelFunc
}

// EventBus fans events out to named subscribers. Each subscriber runs on
// its own goroutine and sees events in dispatch order.
type EventBus[E any] struct {
	mu         sync.RWMutex
	subs       map[string]*subscriber[E]
	closed     bool
	errs       chan error
	wg         sync.WaitGroup
	sending    sync.WaitGroup
	bufferSize int
}

// NewEventBus constructs a bus whose subscribers buffer up to bufferSize
// events each.
func NewEventBus[E any](bufferSize int) *EventBus[E] {
	return &EventBus[E]{
		subs:       make(map[string]*subscriber[E]),
		errs:       make(chan error, 64),
		bufferSize: bufferSize,
	}
}

// Subscribe registers handler under name for the events filter accepts. A nil
// filter accepts every event. The subscriber is removed when ctx is done.
func (b *EventBus[E]) Subscribe(
	ctx context.Context,
	name string,
	filter func(E) bool,
	handler func(ctx context.Context, event E) error,
) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	if filter == nil {
		filter = func(E) bool { return true }
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subs[name]; exists {
		return fmt.Errorf("handler with name %q already registered", name)
	}

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &subscriber[E]{
		name:    name,
		filter:  filter,
		handler: handler,
		events:  make(chan E, b.bufferSize),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	b.subs[name] = s

	b.wg.Add(1)
	go b.runSubscriber(workerCtx, s)

	go func() {
		select {
		case <-ctx.Done():
			b.removeSubscriber(name)
		case <-workerCtx.Done():
		}
	}()

	return nil
}

// Errors reports handler failures. Errors are dropped when nobody reads
// and the channel is full.
func (b *EventBus[E]) Errors() <-chan error {
	return b.errs
}

// Dispatch delivers event to every matching subscriber, blocking while a
// subscriber's buffer is full. The lock is only held while the subscribers
// are collected, so handlers may dispatch on the same bus.
func (b *EventBus[E]) Dispatch(ctx context.Context, event E) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	targets := make([]*subscriber[E], 0, len(b.subs))
	for _, s := range b.subs {
		if s.filter(event) {
			targets = append(targets, s)
		}
	}
	b.sending.Add(1)
	b.mu.RUnlock()
	defer b.sending.Done()

	for _, s := range targets {
		select {
		case s.events <- event:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close stops accepting events, waits for in-flight dispatches and for
// subscribers to drain what they have buffered, then closes the error
// channel.
func (b *EventBus[E]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscriber[E], 0, len(b.subs))
	for name, s := range b.subs {
		subs = append(subs, s)
		delete(b.subs, name)
	}
	b.mu.Unlock()

	b.sending.Wait()
	for _, s := range subs {
		close(s.events)
	}

	b.wg.Wait()
	close(b.errs)
	return nil
}

func (b *EventBus[E]) runSubscriber(ctx context.Context, s *subscriber[E]) {
	defer b.wg.Done()
	defer s.cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.events:
			if !ok {
				return
			}
			if err := s.handler(ctx, event); err != nil {
				select {
				case b.errs <- fmt.Errorf("handler %q: %w", s.name, err):
				default:
				}
			}
		}
	}
}

// removeSubscriber stops the worker without closing its channel; a
// dispatch that already picked the subscriber gives up on done.
func (b *EventBus[E]) removeSubscriber(name string) {
	b.mu.Lock()
	s, ok := b.subs[name]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subs, name)
	b.mu.Unlock()

	close(s.done)
	s.cancel()
}
