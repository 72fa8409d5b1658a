// Package kurrentdb provides an fmodel.EventRepository on KurrentDB
// (formerly EventStoreDB). Stream revisions map one to one onto event
// versions, starting at 0.
package kurrentdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/kurrent-io/KurrentDB-Client-Go/kurrentdb"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/codec"
)

// EventRepository reads and appends streams named by fmodel.IdentifierOf
// the command (on fetch) and of the events (on save).
type EventRepository[C, E any] struct {
	client *kurrentdb.Client
	codec  codec.Codec[E]
}

var _ fmodel.EventRepository[string, string, uint64] = (*EventRepository[string, string])(nil)

// NewEventRepository creates a KurrentDB-backed event repository.
func NewEventRepository[C, E any](client *kurrentdb.Client, c codec.Codec[E]) *EventRepository[C, E] {
	return &EventRepository[C, E]{client: client, codec: c}
}

func (r *EventRepository[C, E]) FetchEvents(ctx context.Context, command C) ([]fmodel.Versioned[E, uint64], error) {
	streamID := fmodel.IdentifierOf(command)
	stream, err := r.client.ReadStream(ctx, streamID, kurrentdb.ReadStreamOptions{
		Direction: kurrentdb.Forwards,
		From:      kurrentdb.Start{},
	}, math.MaxInt64)
	if err != nil {
		if isStreamNotFound(err) {
			return []fmodel.Versioned[E, uint64]{}, nil
		}
		return nil, fmt.Errorf("read stream %q: %w", streamID, err)
	}
	defer stream.Close()

	events := make([]fmodel.Versioned[E, uint64], 0)
	for {
		resolved, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			if isStreamNotFound(err) {
				return events, nil
			}
			return nil, fmt.Errorf("read stream %q: %w", streamID, err)
		}
		if resolved.Event == nil {
			continue
		}

		event, err := r.codec.Unmarshal(resolved.Event.EventType, resolved.Event.Data)
		if err != nil {
			return nil, fmt.Errorf("cannot unmarshal event %q: %w", resolved.Event.EventType, err)
		}
		events = append(events, fmodel.Versioned[E, uint64]{Value: event, Version: resolved.Event.EventNumber})
	}
}

func (r *EventRepository[C, E]) Save(ctx context.Context, events []E, expected *uint64) ([]fmodel.Versioned[E, uint64], error) {
	if len(events) == 0 {
		return []fmodel.Versioned[E, uint64]{}, nil
	}

	streamID := fmodel.IdentifierOf(events[0])
	data := make([]kurrentdb.EventData, len(events))
	for i, event := range events {
		if id := fmodel.IdentifierOf(event); id != streamID {
			return nil, fmt.Errorf("save events to stream %q: event %d targets stream %q: %w",
				streamID, i, id, fmodel.ErrInvalidVersion)
		}
		name, payload, err := r.codec.Marshal(event)
		if err != nil {
			return nil, err
		}
		data[i] = kurrentdb.EventData{
			EventID:     uuid.New(),
			EventType:   name,
			ContentType: kurrentdb.ContentTypeJson,
			Data:        payload,
		}
	}

	result, err := r.client.AppendToStream(ctx, streamID, kurrentdb.AppendToStreamOptions{
		StreamState: expectedState(expected),
	}, data...)
	if err != nil {
		if isWrongExpectedVersion(err) {
			return nil, fmodel.NewVersionConflictError[uint64](streamID, expected, nil)
		}
		return nil, fmt.Errorf("append to stream %q: %w", streamID, err)
	}

	return versioned(events, result.NextExpectedVersion), nil
}

// expectedState maps the optimistic version onto KurrentDB's stream state:
// no version means the stream must not exist yet.
func expectedState(expected *uint64) kurrentdb.StreamState {
	if expected == nil {
		return kurrentdb.NoStream{}
	}
	return kurrentdb.StreamRevision{Value: *expected}
}

// versioned numbers events so that the last one carries last.
func versioned[E any](events []E, last uint64) []fmodel.Versioned[E, uint64] {
	first := last + 1 - uint64(len(events))
	out := make([]fmodel.Versioned[E, uint64], len(events))
	for i, event := range events {
		out[i] = fmodel.Versioned[E, uint64]{Value: event, Version: first + uint64(i)}
	}
	return out
}

func isWrongExpectedVersion(err error) bool {
	var kerr *kurrentdb.Error
	return errors.As(err, &kerr) && kerr.Code() == kurrentdb.ErrorCodeWrongExpectedVersion
}

func isStreamNotFound(err error) bool {
	var kerr *kurrentdb.Error
	return errors.As(err, &kerr) && kerr.Code() == kurrentdb.ErrorCodeResourceNotFound
}
