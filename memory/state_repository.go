package memory

import (
	"context"
	"sync"

	"github.com/terraskye/fmodel"
)

// states is the versioned key/value table shared by the state and view
// repositories. A stored state's version starts at 0 and grows by one per
// successful save.
type states[S any] struct {
	mu       sync.RWMutex
	stateKey func(S) string
	entries  map[string]fmodel.Versioned[S, uint64]
}

func newStates[S any](stateKey func(S) string) *states[S] {
	return &states[S]{
		stateKey: stateKey,
		entries:  make(map[string]fmodel.Versioned[S, uint64]),
	}
}

func (s *states[S]) fetch(ctx context.Context, key string) (*fmodel.Versioned[S, uint64], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *states[S]) save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	if err := ctx.Err(); err != nil {
		return fmodel.Versioned[S, uint64]{}, err
	}

	key := s.stateKey(state)

	s.mu.Lock()
	defer s.mu.Unlock()

	var actual *uint64
	if entry, ok := s.entries[key]; ok {
		v := entry.Version
		actual = &v
	}
	if !sameVersion(expected, actual) {
		return fmodel.Versioned[S, uint64]{}, fmodel.NewVersionConflictError(key, expected, actual)
	}

	next := uint64(0)
	if actual != nil {
		next = *actual + 1
	}
	entry := fmodel.Versioned[S, uint64]{Value: state, Version: next}
	s.entries[key] = entry
	return entry, nil
}

// StateRepository is an in-memory fmodel.StateRepository.
type StateRepository[C, S any] struct {
	commandKey func(C) string
	states     *states[S]
}

var _ fmodel.StateRepository[string, string, uint64] = (*StateRepository[string, string])(nil)

// NewStateRepository keys states with fmodel.IdentifierOf.
func NewStateRepository[C, S any]() *StateRepository[C, S] {
	return NewStateRepositoryWithKeys(fmodel.IdentifierOf[C], fmodel.IdentifierOf[S])
}

func NewStateRepositoryWithKeys[C, S any](commandKey func(C) string, stateKey func(S) string) *StateRepository[C, S] {
	return &StateRepository[C, S]{
		commandKey: commandKey,
		states:     newStates(stateKey),
	}
}

func (r *StateRepository[C, S]) FetchState(ctx context.Context, command C) (*fmodel.Versioned[S, uint64], error) {
	return r.states.fetch(ctx, r.commandKey(command))
}

func (r *StateRepository[C, S]) Save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	return r.states.save(ctx, state, expected)
}

// ViewStateRepository is an in-memory fmodel.ViewStateRepository.
type ViewStateRepository[E, S any] struct {
	eventKey func(E) string
	states   *states[S]
}

var _ fmodel.ViewStateRepository[string, string, uint64] = (*ViewStateRepository[string, string])(nil)

// NewViewStateRepository keys states with fmodel.IdentifierOf.
func NewViewStateRepository[E, S any]() *ViewStateRepository[E, S] {
	return NewViewStateRepositoryWithKeys(fmodel.IdentifierOf[E], fmodel.IdentifierOf[S])
}

func NewViewStateRepositoryWithKeys[E, S any](eventKey func(E) string, stateKey func(S) string) *ViewStateRepository[E, S] {
	return &ViewStateRepository[E, S]{
		eventKey: eventKey,
		states:   newStates(stateKey),
	}
}

func (r *ViewStateRepository[E, S]) FetchState(ctx context.Context, event E) (*fmodel.Versioned[S, uint64], error) {
	return r.states.fetch(ctx, r.eventKey(event))
}

func (r *ViewStateRepository[E, S]) Save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	return r.states.save(ctx, state, expected)
}
