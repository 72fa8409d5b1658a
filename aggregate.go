package fmodel

import "context"

// Versioned pairs a value with the version the repository assigned to it.
type Versioned[T, V any] struct {
	Value   T
	Version V
}

// EventRepository is the persistence boundary of an EventSourcedAggregate.
//
// FetchEvents returns the stream the command targets, oldest first, or an
// empty slice when it has no history.
//
// Save appends events to the stream. expected is the version of the last
// event fetched, nil when the stream was empty. Implementations must reject
// the save with an error matching ErrConcurrencyConflict when the stream has
// moved past expected. Saving zero events is a no-op.
type EventRepository[C, E, V any] interface {
	FetchEvents(ctx context.Context, command C) ([]Versioned[E, V], error)
	Save(ctx context.Context, events []E, expected *V) ([]Versioned[E, V], error)
}

// StateRepository is the persistence boundary of a StateStoredAggregate.
//
// FetchState returns nil when no state is stored for the command's target.
// Save stores state if the stored version still equals expected (nil
// meaning "nothing stored"), otherwise it fails with ErrConcurrencyConflict.
// Save must key the state by the same identity FetchState looks it up by.
type StateRepository[C, S, V any] interface {
	FetchState(ctx context.Context, command C) (*Versioned[S, V], error)
	Save(ctx context.Context, state S, expected *V) (Versioned[S, V], error)
}

// EventSourcedAggregate binds a Decider to an EventRepository. It holds no
// mutable state and is safe for concurrent use.
type EventSourcedAggregate[C, S, E, V any] struct {
	repository EventRepository[C, E, V]
	decider    Decider[C, S, E]
}

func NewEventSourcedAggregate[C, S, E, V any](
	repository EventRepository[C, E, V],
	decider Decider[C, S, E],
) *EventSourcedAggregate[C, S, E, V] {
	return &EventSourcedAggregate[C, S, E, V]{
		repository: repository,
		decider:    decider,
	}
}

// Handle runs one fetch-decide-save cycle:
//  1. fetch the event stream the command targets,
//  2. fold it through Evolve starting from InitialState,
//  3. Decide; a rejection is returned as a *DomainError and nothing is saved,
//  4. save the new events against the last fetched version.
//
// Repository errors are returned unchanged.
func (a *EventSourcedAggregate[C, S, E, V]) Handle(ctx context.Context, command C) ([]Versioned[E, V], error) {
	history, err := a.repository.FetchEvents(ctx, command)
	if err != nil {
		return nil, err
	}

	var latest *V
	state := a.decider.InitialState()
	for _, event := range history {
		state = a.decider.Evolve(state, event.Value)
		version := event.Version
		latest = &version
	}

	events, err := a.decider.Decide(command, state)
	if err != nil {
		return nil, asDomainError(err)
	}

	return a.repository.Save(ctx, events, latest)
}

// StateStoredAggregate binds a Decider to a StateRepository. It holds no
// mutable state and is safe for concurrent use.
type StateStoredAggregate[C, S, E, V any] struct {
	repository StateRepository[C, S, V]
	decider    Decider[C, S, E]
}

func NewStateStoredAggregate[C, S, E, V any](
	repository StateRepository[C, S, V],
	decider Decider[C, S, E],
) *StateStoredAggregate[C, S, E, V] {
	return &StateStoredAggregate[C, S, E, V]{
		repository: repository,
		decider:    decider,
	}
}

// Handle fetches the current state (or starts from InitialState), decides,
// evolves the produced events into the new state and saves it against the
// fetched version.
//
// When nothing is stored and Decide produces no events the command is a
// no-op: the initial state is returned unsaved with a zero version.
func (a *StateStoredAggregate[C, S, E, V]) Handle(ctx context.Context, command C) (Versioned[S, V], error) {
	current, err := a.repository.FetchState(ctx, command)
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
		state = a.decider.InitialState()
	}

	events, err := a.decider.Decide(command, state)
	if err != nil {
		return Versioned[S, V]{}, asDomainError(err)
	}
	if current == nil && len(events) == 0 {
		return Versioned[S, V]{Value: state}, nil
	}

	return a.repository.Save(ctx, Fold(a.decider.Evolve, state, events), expected)
}
