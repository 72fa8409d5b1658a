package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/codec"
)

// Envelope is an event row read back from the journal.
type Envelope[E any] struct {
	GlobalSeq  uint64
	EventID    uuid.UUID
	StreamID   string
	Version    uint64
	Event      E
	OccurredAt time.Time
}

// EventRepository is a SQLite fmodel.EventRepository. Streams are keyed by
// fmodel.IdentifierOf the command (on fetch) and of the events (on save).
type EventRepository[C, E any] struct {
	store *Store
	codec codec.Codec[E]
}

var _ fmodel.EventRepository[string, string, uint64] = (*EventRepository[string, string])(nil)

func NewEventRepository[C, E any](store *Store, c codec.Codec[E]) *EventRepository[C, E] {
	return &EventRepository[C, E]{store: store, codec: c}
}

func (r *EventRepository[C, E]) FetchEvents(ctx context.Context, command C) ([]fmodel.Versioned[E, uint64], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streamID := fmodel.IdentifierOf(command)
	rows, err := r.store.sqlDB.QueryContext(ctx, `
SELECT version, event_type, data
FROM fmodel_events
WHERE stream_id = ?
ORDER BY version ASC
`, streamID)
	if err != nil {
		return nil, fmt.Errorf("fetch stream %q: %w", streamID, err)
	}
	defer rows.Close()

	events := make([]fmodel.Versioned[E, uint64], 0)
	for rows.Next() {
		var (
			version   uint64
			eventType string
			data      []byte
		)
		if err := rows.Scan(&version, &eventType, &data); err != nil {
			return nil, fmt.Errorf("scan stream %q: %w", streamID, err)
		}
		event, err := r.codec.Unmarshal(eventType, data)
		if err != nil {
			return nil, fmt.Errorf("decode stream %q version %d: %w", streamID, version, err)
		}
		events = append(events, fmodel.Versioned[E, uint64]{Value: event, Version: version})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch stream %q: %w", streamID, err)
	}
	return events, nil
}

// Save appends events inside one transaction after checking the stream's
// latest version against expected. The UNIQUE (stream_id, version)
// constraint catches writers that raced past the check.
func (r *EventRepository[C, E]) Save(ctx context.Context, events []E, expected *uint64) ([]fmodel.Versioned[E, uint64], error) {
	if len(events) == 0 {
		return []fmodel.Versioned[E, uint64]{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streamID := fmodel.IdentifierOf(events[0])
	type encoded struct {
		name string
		data []byte
	}
	payloads := make([]encoded, len(events))
	for i, event := range events {
		if id := fmodel.IdentifierOf(event); id != streamID {
			return nil, fmt.Errorf("save events to stream %q: event %d targets stream %q: %w",
				streamID, i, id, fmodel.ErrInvalidVersion)
		}
		name, data, err := r.codec.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("encode event %d for stream %q: %w", i, streamID, err)
		}
		payloads[i] = encoded{name: name, data: data}
	}

	tx, err := r.store.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		if isBusyError(err) {
			return nil, fmt.Errorf("append to stream %q: database busy: %w", streamID, err)
		}
		return nil, fmt.Errorf("begin append to stream %q: %w", streamID, err)
	}
	defer func() { _ = tx.Rollback() }()

	actual, err := latestVersion(ctx, tx, streamID)
	if err != nil {
		return nil, err
	}
	if !sameVersion(expected, actual) {
		return nil, fmodel.NewVersionConflictError(streamID, expected, actual)
	}

	next := uint64(0)
	if actual != nil {
		next = *actual + 1
	}

	occurredAt := r.store.now().UTC().UnixMilli()
	saved := make([]fmodel.Versioned[E, uint64], len(events))
	for i, event := range events {
		_, err := tx.ExecContext(ctx, `
INSERT INTO fmodel_events (event_id, stream_id, version, event_type, data, occurred_at)
VALUES (?, ?, ?, ?, ?, ?)
`, uuid.NewString(), streamID, next, payloads[i].name, payloads[i].data, occurredAt)
		if err != nil {
			if isConstraintError(err) {
				return nil, fmodel.NewVersionConflictError(streamID, expected, &next)
			}
			return nil, fmt.Errorf("append to stream %q: %w", streamID, err)
		}
		saved[i] = fmodel.Versioned[E, uint64]{Value: event, Version: next}
		next++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append to stream %q: %w", streamID, err)
	}
	return saved, nil
}

// LoadFromAll reads the journal across streams in append order, starting
// after the given global sequence.
func (r *EventRepository[C, E]) LoadFromAll(ctx context.Context, after uint64, limit int) ([]Envelope[E], error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := r.store.sqlDB.QueryContext(ctx, `
SELECT global_seq, event_id, stream_id, version, event_type, data, occurred_at
FROM fmodel_events
WHERE global_seq > ?
ORDER BY global_seq ASC
LIMIT ?
`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("load from all: %w", err)
	}
	defer rows.Close()

	var out []Envelope[E]
	for rows.Next() {
		var (
			env        Envelope[E]
			eventID    string
			eventType  string
			data       []byte
			occurredAt int64
		)
		if err := rows.Scan(&env.GlobalSeq, &eventID, &env.StreamID, &env.Version, &eventType, &data, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if env.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("parse event id %q: %w", eventID, err)
		}
		if env.Event, err = r.codec.Unmarshal(eventType, data); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", env.GlobalSeq, err)
		}
		env.OccurredAt = time.UnixMilli(occurredAt).UTC()
		out = append(out, env)
	}
	return out, rows.Err()
}

func latestVersion(ctx context.Context, tx *sql.Tx, streamID string) (*uint64, error) {
	var version sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT MAX(version) FROM fmodel_events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read version of stream %q: %w", streamID, err)
	}
	if !version.Valid {
		return nil, nil
	}
	v := uint64(version.Int64)
	return &v, nil
}

func sameVersion(expected, actual *uint64) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	return *expected == *actual
}
