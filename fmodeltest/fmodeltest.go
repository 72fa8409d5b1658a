// Package fmodeltest is a given/when/then DSL for testing deciders and
// views without any repository.
//
//	fmodeltest.ForDecider(OrderDecider()).
//		Given(OrderCreated{OrderID: 1}).
//		When(CancelOrder{OrderID: 1}).
//		Then(t, OrderCancelled{OrderID: 1})
package fmodeltest

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraskye/fmodel"
)

// TestingT is the subset of *testing.T the DSL needs.
type TestingT interface {
	require.TestingT
	Helper()
}

// DeciderSpec specifies one decision. Given events are folded into the
// starting state; GivenState replaces them with an explicit state.
type DeciderSpec[C, S, E any] struct {
	decider    fmodel.Decider[C, S, E]
	given      []E
	givenState *S
	command    C
	hasCommand bool
}

func ForDecider[C, S, E any](decider fmodel.Decider[C, S, E]) *DeciderSpec[C, S, E] {
	return &DeciderSpec[C, S, E]{decider: decider}
}

// Given sets the event history.
func (s *DeciderSpec[C, S, E]) Given(events ...E) *DeciderSpec[C, S, E] {
	s.given = events
	s.givenState = nil
	return s
}

// GivenState sets the current state for state-stored specifications.
func (s *DeciderSpec[C, S, E]) GivenState(state S) *DeciderSpec[C, S, E] {
	s.givenState = &state
	s.given = nil
	return s
}

func (s *DeciderSpec[C, S, E]) When(command C) *DeciderSpec[C, S, E] {
	s.command = command
	s.hasCommand = true
	return s
}

func (s *DeciderSpec[C, S, E]) state() S {
	if s.givenState != nil {
		return *s.givenState
	}
	return fmodel.Fold(s.decider.Evolve, s.decider.InitialState(), s.given)
}

// Then asserts the command produces exactly the expected events, in order.
// No expected events asserts the command is a no-op.
func (s *DeciderSpec[C, S, E]) Then(t TestingT, expected ...E) {
	t.Helper()
	require.True(t, s.hasCommand, "When was not called")

	events, err := s.decider.Decide(s.command, s.state())
	require.NoError(t, err)
	if len(expected) == 0 {
		assert.Empty(t, events)
		return
	}
	assert.Equal(t, expected, events)
}

// ThenState asserts the state after evolving the produced events.
func (s *DeciderSpec[C, S, E]) ThenState(t TestingT, expected S) {
	t.Helper()
	require.True(t, s.hasCommand, "When was not called")

	state, err := s.decider.ComputeNewState(ptr(s.state()), s.command)
	require.NoError(t, err)
	assert.Equal(t, expected, state)
}

// ThenError asserts the command is rejected with an error matching target.
func (s *DeciderSpec[C, S, E]) ThenError(t TestingT, target error) {
	t.Helper()
	require.True(t, s.hasCommand, "When was not called")

	_, err := s.decider.Decide(s.command, s.state())
	assert.ErrorIs(t, err, target)
}

// ViewSpec specifies a projection.
type ViewSpec[S, E any] struct {
	view  fmodel.View[S, E]
	given []E
}

func ForView[S, E any](view fmodel.View[S, E]) *ViewSpec[S, E] {
	return &ViewSpec[S, E]{view: view}
}

func (s *ViewSpec[S, E]) Given(events ...E) *ViewSpec[S, E] {
	s.given = events
	return s
}

// Then asserts the state the given events project to.
func (s *ViewSpec[S, E]) Then(t TestingT, expected S) {
	t.Helper()
	assert.Equal(t, expected, s.view.ComputeNewState(nil, s.given...))
}

func ptr[T any](v T) *T { return &v }
