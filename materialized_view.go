package fmodel

import "context"

// ViewStateRepository is the persistence boundary of a MaterializedView.
// It follows the same optimistic rules as StateRepository, keyed by event.
// The view's Evolve must give the state the identity of every event it
// folds, so Save stores it under the key FetchState used.
type ViewStateRepository[E, S, V any] interface {
	FetchState(ctx context.Context, event E) (*Versioned[S, V], error)
	Save(ctx context.Context, state S, expected *V) (Versioned[S, V], error)
}

// MaterializedView binds a View to a ViewStateRepository.
type MaterializedView[S, E, V any] struct {
	repository ViewStateRepository[E, S, V]
	view       View[S, E]
}

func NewMaterializedView[S, E, V any](repository ViewStateRepository[E, S, V], view View[S, E]) *MaterializedView[S, E, V] {
	return &MaterializedView[S, E, V]{
		repository: repository,
		view:       view,
	}
}

// Handle projects one already-accepted event: fetch, evolve, save.
func (m *MaterializedView[S, E, V]) Handle(ctx context.Context, event E) (Versioned[S, V], error) {
	current, err := m.repository.FetchState(ctx, event)
	if err != nil {
		return Versioned[S, V]{}, err
	}

	var (
		state    S
		expected *V
	)
	if current != nil {
		state = current.Value
		version := current.Version
		expected = &version
	} else {
		state = m.view.InitialState()
	}

	return m.repository.Save(ctx, m.view.Evolve(state, event), expected)
}
