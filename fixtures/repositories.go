package fixtures

import (
	"context"
	"sync"

	"github.com/terraskye/fmodel"
)

// EventRepositorySpy is a configurable fmodel.EventRepository for testing.
// It tracks calls and delegates to the configured functions, or to Next
// when a function is nil.
type EventRepositorySpy[C, E, V any] struct {
	mu sync.Mutex

	FetchFn func(ctx context.Context, command C) ([]fmodel.Versioned[E, V], error)
	SaveFn  func(ctx context.Context, events []E, expected *V) ([]fmodel.Versioned[E, V], error)
	Next    fmodel.EventRepository[C, E, V]

	FetchCalls int
	SaveCalls  int

	LastSaveEvents   []E
	LastSaveExpected *V
}

func (s *EventRepositorySpy[C, E, V]) FetchEvents(ctx context.Context, command C) ([]fmodel.Versioned[E, V], error) {
	s.mu.Lock()
	s.FetchCalls++
	fn := s.FetchFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, command)
	}
	if s.Next != nil {
		return s.Next.FetchEvents(ctx, command)
	}
	return nil, nil
}

func (s *EventRepositorySpy[C, E, V]) Save(ctx context.Context, events []E, expected *V) ([]fmodel.Versioned[E, V], error) {
	s.mu.Lock()
	s.SaveCalls++
	s.LastSaveEvents = events
	s.LastSaveExpected = expected
	fn := s.SaveFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, events, expected)
	}
	if s.Next != nil {
		return s.Next.Save(ctx, events, expected)
	}
	return nil, nil
}

// Calls returns the number of fetch and save calls so far.
func (s *EventRepositorySpy[C, E, V]) Calls() (fetch, save int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FetchCalls, s.SaveCalls
}

// StateRepositorySpy is a configurable fmodel.StateRepository for testing.
type StateRepositorySpy[C, S, V any] struct {
	mu sync.Mutex

	FetchFn func(ctx context.Context, command C) (*fmodel.Versioned[S, V], error)
	SaveFn  func(ctx context.Context, state S, expected *V) (fmodel.Versioned[S, V], error)
	Next    fmodel.StateRepository[C, S, V]

	FetchCalls int
	SaveCalls  int
}

func (s *StateRepositorySpy[C, S, V]) FetchState(ctx context.Context, command C) (*fmodel.Versioned[S, V], error) {
	s.mu.Lock()
	s.FetchCalls++
	fn := s.FetchFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, command)
	}
	if s.Next != nil {
		return s.Next.FetchState(ctx, command)
	}
	return nil, nil
}

func (s *StateRepositorySpy[C, S, V]) Save(ctx context.Context, state S, expected *V) (fmodel.Versioned[S, V], error) {
	s.mu.Lock()
	s.SaveCalls++
	fn := s.SaveFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, state, expected)
	}
	if s.Next != nil {
		return s.Next.Save(ctx, state, expected)
	}
	return fmodel.Versioned[S, V]{Value: state}, nil
}

// Barrier blocks every caller of Wait until n callers arrived. It lets tests
// line up concurrent handlers right after they fetched the same version.
type Barrier struct {
	wg sync.WaitGroup
}

func NewBarrier(n int) *Barrier {
	b := &Barrier{}
	b.wg.Add(n)
	return b
}

func (b *Barrier) Wait() {
	b.wg.Done()
	b.wg.Wait()
}
