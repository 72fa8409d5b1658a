// Package fmodel provides the Decider, View and Saga datatypes for modeling
// event-sourced and state-stored domain logic, the combinators that compose
// them, and the runners that bind them to a persistence boundary.
//
// The domain layer is pure: a Decider decides which events a command produces
// and evolves state from events, a View evolves a projection from events, and
// a Saga reacts to action results with new actions. None of them perform I/O.
//
// The application layer orchestrates those functions against repositories:
//
//	repository := memory.NewEventRepository[OrderCommand, OrderEvent]()
//	aggregate := fmodel.NewEventSourcedAggregate(repository, orderDecider)
//	events, err := aggregate.Handle(ctx, CreateOrder{OrderID: 1})
//
// Optimistic concurrency is enforced by the repositories: a save against a
// stale version fails with an error matching ErrConcurrencyConflict and the
// caller may retry the whole fetch-decide-save cycle (see RetryOnConflict).
package fmodel
