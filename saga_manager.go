package fmodel

import "context"

// ActionPublisher delivers actions computed by a saga, typically to a
// command bus or another aggregate. It returns the actions it published.
type ActionPublisher[A any] interface {
	Publish(ctx context.Context, actions []A) ([]A, error)
}

// ActionPublisherFunc adapts a function to ActionPublisher.
type ActionPublisherFunc[A any] func(ctx context.Context, actions []A) ([]A, error)

func (f ActionPublisherFunc[A]) Publish(ctx context.Context, actions []A) ([]A, error) {
	return f(ctx, actions)
}

// SagaManager binds a Saga to an ActionPublisher.
type SagaManager[AR, A any] struct {
	publisher ActionPublisher[A]
	saga      Saga[AR, A]
}

func NewSagaManager[AR, A any](publisher ActionPublisher[A], saga Saga[AR, A]) *SagaManager[AR, A] {
	return &SagaManager[AR, A]{
		publisher: publisher,
		saga:      saga,
	}
}

// Handle computes the actions the saga reacts to actionResult with and
// publishes them. Publisher errors are returned unchanged.
func (m *SagaManager[AR, A]) Handle(ctx context.Context, actionResult AR) ([]A, error) {
	return m.publisher.Publish(ctx, m.saga.ComputeNewActions(actionResult))
}
