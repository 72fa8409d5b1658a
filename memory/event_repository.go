package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terraskye/fmodel"
)

// Envelope is an event as stored by the EventRepository.
type Envelope[E any] struct {
	EventID       uuid.UUID
	StreamID      string
	Event         E
	Version       uint64
	GlobalVersion uint64
	OccurredAt    time.Time
}

// EventRepository is an in-memory fmodel.EventRepository. Streams are keyed
// by the identifier of the command (on fetch) and of the first event (on
// save). Versions start at 0 for the first event of a stream.
type EventRepository[C, E any] struct {
	mu         sync.RWMutex
	now        func() time.Time
	commandKey func(C) string
	eventKey   func(E) string
	streams    map[string][]*Envelope[E]
	global     []*Envelope[E]
}

var _ fmodel.EventRepository[string, string, uint64] = (*EventRepository[string, string])(nil)

// NewEventRepository keys streams with fmodel.IdentifierOf.
func NewEventRepository[C, E any](opts ...Option) *EventRepository[C, E] {
	return NewEventRepositoryWithKeys(fmodel.IdentifierOf[C], fmodel.IdentifierOf[E], opts...)
}

// NewEventRepositoryWithKeys keys streams with the given functions.
func NewEventRepositoryWithKeys[C, E any](commandKey func(C) string, eventKey func(E) string, opts ...Option) *EventRepository[C, E] {
	o := newOptions(opts)
	return &EventRepository[C, E]{
		now:        o.now,
		commandKey: commandKey,
		eventKey:   eventKey,
		streams:    make(map[string][]*Envelope[E]),
	}
}

func (r *EventRepository[C, E]) FetchEvents(ctx context.Context, command C) ([]fmodel.Versioned[E, uint64], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stream := r.streams[r.commandKey(command)]
	out := make([]fmodel.Versioned[E, uint64], len(stream))
	for i, env := range stream {
		out[i] = fmodel.Versioned[E, uint64]{Value: env.Event, Version: env.Version}
	}
	return out, nil
}

func (r *EventRepository[C, E]) Save(ctx context.Context, events []E, expected *uint64) ([]fmodel.Versioned[E, uint64], error) {
	if len(events) == 0 {
		return []fmodel.Versioned[E, uint64]{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streamID := r.eventKey(events[0])
	for i, event := range events {
		if id := r.eventKey(event); id != streamID {
			return nil, fmt.Errorf("save events to stream %q: event %d targets stream %q: %w",
				streamID, i, id, fmodel.ErrInvalidVersion)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stream := r.streams[streamID]
	var actual *uint64
	if n := len(stream); n > 0 {
		v := stream[n-1].Version
		actual = &v
	}
	if !sameVersion(expected, actual) {
		return nil, fmodel.NewVersionConflictError(streamID, expected, actual)
	}

	next := uint64(0)
	if actual != nil {
		next = *actual + 1
	}

	occurredAt := r.now()
	out := make([]fmodel.Versioned[E, uint64], len(events))
	for i, event := range events {
		env := &Envelope[E]{
			EventID:       uuid.New(),
			StreamID:      streamID,
			Event:         event,
			Version:       next,
			GlobalVersion: uint64(len(r.global)),
			OccurredAt:    occurredAt,
		}
		stream = append(stream, env)
		r.global = append(r.global, env)
		out[i] = fmodel.Versioned[E, uint64]{Value: event, Version: next}
		next++
	}
	r.streams[streamID] = stream

	return out, nil
}

// LoadStream returns the stored envelopes of one stream, oldest first.
func (r *EventRepository[C, E]) LoadStream(id string) ([]Envelope[E], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stream, ok := r.streams[id]
	if !ok {
		return nil, fmt.Errorf("load stream %q: %w", id, fmodel.ErrStreamNotFound)
	}
	return copyEnvelopes(stream), nil
}

// LoadFromAll returns every stored envelope across streams in append order,
// starting at the given global version.
func (r *EventRepository[C, E]) LoadFromAll(from uint64) []Envelope[E] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if from >= uint64(len(r.global)) {
		return nil
	}
	return copyEnvelopes(r.global[from:])
}

func copyEnvelopes[E any](in []*Envelope[E]) []Envelope[E] {
	out := make([]Envelope[E], len(in))
	for i, env := range in {
		out[i] = *env
	}
	return out
}

func sameVersion(expected, actual *uint64) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	return *expected == *actual
}
