package fmodel

// View is a pure read-side projection: it evolves a state from events and
// never emits events of its own.
type View[S, E any] struct {
	Evolve       func(state S, event E) S
	InitialState func() S
}

// ComputeNewState folds events into current, or into the initial state when
// current is nil.
func (v View[S, E]) ComputeNewState(current *S, events ...E) S {
	var state S
	if current != nil {
		state = *current
	} else {
		state = v.InitialState()
	}
	return Fold(v.Evolve, state, events)
}

// MapViewState adapts v to a different state representation.
func MapViewState[S, S2, E any](v View[S, E], to func(S2) S, from func(S) S2) View[S2, E] {
	return View[S2, E]{
		Evolve: func(state S2, event E) S2 {
			return from(v.Evolve(to(state), event))
		},
		InitialState: func() S2 {
			return from(v.InitialState())
		},
	}
}

// MapViewEvent adapts v to a different event type by pre-applying f.
func MapViewEvent[S, E, E2 any](v View[S, E], f func(E2) E) View[S, E2] {
	return View[S, E2]{
		Evolve: func(state S, event E2) S {
			return v.Evolve(state, f(event))
		},
		InitialState: v.InitialState,
	}
}

// CombineViews composes two views over disjoint event types. Each event is
// routed to the view owning its variant; the other sub-state is untouched.
func CombineViews[S1, E1, S2, E2 any](v1 View[S1, E1], v2 View[S2, E2]) View[Pair[S1, S2], Sum[E1, E2]] {
	return View[Pair[S1, S2], Sum[E1, E2]]{
		Evolve: func(state Pair[S1, S2], event Sum[E1, E2]) Pair[S1, S2] {
			if e, ok := event.First(); ok {
				return Pair[S1, S2]{First: v1.Evolve(state.First, e), Second: state.Second}
			}
			if e, ok := event.Second(); ok {
				return Pair[S1, S2]{First: state.First, Second: v2.Evolve(state.Second, e)}
			}
			return state
		},
		InitialState: func() Pair[S1, S2] {
			return Pair[S1, S2]{First: v1.InitialState(), Second: v2.InitialState()}
		},
	}
}

// MergeViews composes two views subscribed to the same event type. Every
// event is delivered to both.
func MergeViews[S1, S2, E any](v1 View[S1, E], v2 View[S2, E]) View[Pair[S1, S2], E] {
	return View[Pair[S1, S2], E]{
		Evolve: func(state Pair[S1, S2], event E) Pair[S1, S2] {
			return Pair[S1, S2]{First: v1.Evolve(state.First, event), Second: v2.Evolve(state.Second, event)}
		},
		InitialState: func() Pair[S1, S2] {
			return Pair[S1, S2]{First: v1.InitialState(), Second: v2.InitialState()}
		},
	}
}

// MergeViews3 merges three views subscribed to the same event type.
func MergeViews3[S1, S2, S3, E any](v1 View[S1, E], v2 View[S2, E], v3 View[S3, E]) View[Triple[S1, S2, S3], E] {
	return MapViewState(
		MergeViews(MergeViews(v1, v2), v3),
		nestTriple[S1, S2, S3],
		flattenTriple[S1, S2, S3],
	)
}

// MergeViews4 merges four views subscribed to the same event type.
func MergeViews4[S1, S2, S3, S4, E any](v1 View[S1, E], v2 View[S2, E], v3 View[S3, E], v4 View[S4, E]) View[Tuple4[S1, S2, S3, S4], E] {
	return MapViewState(
		MergeViews(MergeViews3(v1, v2, v3), v4),
		nestTuple4[S1, S2, S3, S4],
		flattenTuple4[S1, S2, S3, S4],
	)
}

func MergeViews5[S1, S2, S3, S4, S5, E any](
	v1 View[S1, E], v2 View[S2, E], v3 View[S3, E], v4 View[S4, E], v5 View[S5, E],
) View[Tuple5[S1, S2, S3, S4, S5], E] {
	return MapViewState(
		MergeViews(MergeViews4(v1, v2, v3, v4), v5),
		nestTuple5[S1, S2, S3, S4, S5],
		flattenTuple5[S1, S2, S3, S4, S5],
	)
}

func MergeViews6[S1, S2, S3, S4, S5, S6, E any](
	v1 View[S1, E], v2 View[S2, E], v3 View[S3, E], v4 View[S4, E], v5 View[S5, E], v6 View[S6, E],
) View[Tuple6[S1, S2, S3, S4, S5, S6], E] {
	return MapViewState(
		MergeViews(MergeViews5(v1, v2, v3, v4, v5), v6),
		nestTuple6[S1, S2, S3, S4, S5, S6],
		flattenTuple6[S1, S2, S3, S4, S5, S6],
	)
}
