package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/codec"
)

// states stores one kind of versioned state in fmodel_states. The version
// of a state starts at 0 and grows by one per successful save.
type states[S any] struct {
	store *Store
	kind  string
	codec codec.Codec[S]
}

func (s states[S]) fetch(ctx context.Context, stateID string) (*fmodel.Versioned[S, uint64], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		version   uint64
		stateType string
		data      []byte
	)
	err := s.store.sqlDB.QueryRowContext(ctx, `
SELECT version, state_type, data
FROM fmodel_states
WHERE kind = ? AND state_id = ?
`, s.kind, stateID).Scan(&version, &stateType, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s %q: %w", s.kind, stateID, err)
	}

	state, err := s.codec.Unmarshal(stateType, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s %q: %w", s.kind, stateID, err)
	}
	return &fmodel.Versioned[S, uint64]{Value: state, Version: version}, nil
}

func (s states[S]) save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	if err := ctx.Err(); err != nil {
		return fmodel.Versioned[S, uint64]{}, err
	}

	stateID := fmodel.IdentifierOf(state)
	name, data, err := s.codec.Marshal(state)
	if err != nil {
		return fmodel.Versioned[S, uint64]{}, fmt.Errorf("encode %s %q: %w", s.kind, stateID, err)
	}
	updatedAt := s.store.now().UTC().UnixMilli()

	if expected == nil {
		_, err := s.store.sqlDB.ExecContext(ctx, `
INSERT INTO fmodel_states (kind, state_id, version, state_type, data, updated_at)
VALUES (?, ?, 0, ?, ?, ?)
`, s.kind, stateID, name, data, updatedAt)
		if err != nil {
			if isConstraintError(err) {
				return fmodel.Versioned[S, uint64]{}, s.conflict(ctx, stateID, expected)
			}
			return fmodel.Versioned[S, uint64]{}, fmt.Errorf("insert %s %q: %w", s.kind, stateID, err)
		}
		return fmodel.Versioned[S, uint64]{Value: state, Version: 0}, nil
	}

	result, err := s.store.sqlDB.ExecContext(ctx, `
UPDATE fmodel_states
SET version = version + 1, state_type = ?, data = ?, updated_at = ?
WHERE kind = ? AND state_id = ? AND version = ?
`, name, data, updatedAt, s.kind, stateID, *expected)
	if err != nil {
		return fmodel.Versioned[S, uint64]{}, fmt.Errorf("update %s %q: %w", s.kind, stateID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmodel.Versioned[S, uint64]{}, fmt.Errorf("update %s %q: %w", s.kind, stateID, err)
	}
	if affected == 0 {
		return fmodel.Versioned[S, uint64]{}, s.conflict(ctx, stateID, expected)
	}
	return fmodel.Versioned[S, uint64]{Value: state, Version: *expected + 1}, nil
}

// conflict reports the version currently stored, best effort.
func (s states[S]) conflict(ctx context.Context, stateID string, expected *uint64) error {
	var actual *uint64
	var version uint64
	err := s.store.sqlDB.QueryRowContext(ctx, `SELECT version FROM fmodel_states WHERE kind = ? AND state_id = ?`, s.kind, stateID).Scan(&version)
	if err == nil {
		actual = &version
	}
	return fmodel.NewVersionConflictError(s.kind+"/"+stateID, expected, actual)
}

// StateRepository is a SQLite fmodel.StateRepository. kind namespaces the
// states of one decider, so several repositories can share a Store.
type StateRepository[C, S any] struct {
	states states[S]
}

var _ fmodel.StateRepository[string, string, uint64] = (*StateRepository[string, string])(nil)

func NewStateRepository[C, S any](store *Store, kind string, c codec.Codec[S]) *StateRepository[C, S] {
	return &StateRepository[C, S]{states: states[S]{store: store, kind: kind, codec: c}}
}

func (r *StateRepository[C, S]) FetchState(ctx context.Context, command C) (*fmodel.Versioned[S, uint64], error) {
	return r.states.fetch(ctx, fmodel.IdentifierOf(command))
}

func (r *StateRepository[C, S]) Save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	return r.states.save(ctx, state, expected)
}

// ViewStateRepository is a SQLite fmodel.ViewStateRepository.
type ViewStateRepository[E, S any] struct {
	states states[S]
}

var _ fmodel.ViewStateRepository[string, string, uint64] = (*ViewStateRepository[string, string])(nil)

func NewViewStateRepository[E, S any](store *Store, kind string, c codec.Codec[S]) *ViewStateRepository[E, S] {
	return &ViewStateRepository[E, S]{states: states[S]{store: store, kind: kind, codec: c}}
}

func (r *ViewStateRepository[E, S]) FetchState(ctx context.Context, event E) (*fmodel.Versioned[S, uint64], error) {
	return r.states.fetch(ctx, fmodel.IdentifierOf(event))
}

func (r *ViewStateRepository[E, S]) Save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	return r.states.save(ctx, state, expected)
}
