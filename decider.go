package fmodel

// Decider is the pure decision-making unit of the domain.
//
// C is the command type, S the state type and E the event type.
//
// Decide turns a command and the current state into the events that should
// be recorded, or a domain error when the command is rejected. An empty,
// non-error result means there is nothing to record. Decide must not mutate
// its inputs.
//
// Evolve applies one event to a state and returns the new state. It is total
// and deterministic: it must handle every event Decide can produce.
//
// InitialState produces the seed state that Evolve is folded from.
type Decider[C, S, E any] struct {
	Decide       func(command C, state S) ([]E, error)
	Evolve       func(state S, event E) S
	InitialState func() S
}

// Fold applies evolve to every event, left to right, starting from state.
func Fold[S, E any](evolve func(S, E) S, state S, events []E) S {
	for _, event := range events {
		state = evolve(state, event)
	}
	return state
}

// ComputeNewEvents rebuilds the current state from the given event history
// and decides which new events the command produces.
func (d Decider[C, S, E]) ComputeNewEvents(current []E, command C) ([]E, error) {
	state := Fold(d.Evolve, d.InitialState(), current)
	return d.Decide(command, state)
}

// ComputeNewState decides on the command against the current state and
// evolves the produced events into the new state. A nil current state is
// replaced by the initial state.
func (d Decider[C, S, E]) ComputeNewState(current *S, command C) (S, error) {
	var state S
	if current != nil {
		state = *current
	} else {
		state = d.InitialState()
	}

	events, err := d.Decide(command, state)
	if err != nil {
		var zero S
		return zero, err
	}
	return Fold(d.Evolve, state, events), nil
}

// MapCommand adapts d to a different command vocabulary by pre-applying f to
// every command before it reaches Decide.
func MapCommand[C, C2, S, E any](d Decider[C, S, E], f func(C2) C) Decider[C2, S, E] {
	return Decider[C2, S, E]{
		Decide: func(command C2, state S) ([]E, error) {
			return d.Decide(f(command), state)
		},
		Evolve:       d.Evolve,
		InitialState: d.InitialState,
	}
}

// MapState adapts d to a different state representation. to converts the
// external state into d's state, from converts back.
func MapState[C, S, S2, E any](d Decider[C, S, E], to func(S2) S, from func(S) S2) Decider[C, S2, E] {
	return Decider[C, S2, E]{
		Decide: func(command C, state S2) ([]E, error) {
			return d.Decide(command, to(state))
		},
		Evolve: func(state S2, event E) S2 {
			return from(d.Evolve(to(state), event))
		},
		InitialState: func() S2 {
			return from(d.InitialState())
		},
	}
}

// MapEvent adapts d to a different event representation. to converts an
// external event into d's event, from converts produced events outward.
func MapEvent[C, S, E, E2 any](d Decider[C, S, E], to func(E2) E, from func(E) E2) Decider[C, S, E2] {
	return Decider[C, S, E2]{
		Decide: func(command C, state S) ([]E2, error) {
			events, err := d.Decide(command, state)
			if err != nil {
				return nil, err
			}
			return mapSlice(events, from), nil
		},
		Evolve: func(state S, event E2) S {
			return d.Evolve(state, to(event))
		},
		InitialState: d.InitialState,
	}
}

// MapError transforms every error returned by Decide. Successful decisions
// pass through untouched, and f never sees a nil error.
func MapError[C, S, E any](d Decider[C, S, E], f func(error) error) Decider[C, S, E] {
	return Decider[C, S, E]{
		Decide: func(command C, state S) ([]E, error) {
			events, err := d.Decide(command, state)
			if err != nil {
				return nil, f(err)
			}
			return events, nil
		},
		Evolve:       d.Evolve,
		InitialState: d.InitialState,
	}
}

// Combine composes two deciders into one operating over the sum of their
// commands and events and the product of their states.
//
// Each command or event is routed to the decider that owns its variant; the
// other sub-state is carried over unchanged. Produced events keep the order
// the owning decider emitted them in. A Sum holding neither variant produces
// no events and leaves both sub-states unchanged.
func Combine[C1, S1, E1, C2, S2, E2 any](
	d1 Decider[C1, S1, E1],
	d2 Decider[C2, S2, E2],
) Decider[Sum[C1, C2], Pair[S1, S2], Sum[E1, E2]] {
	return Decider[Sum[C1, C2], Pair[S1, S2], Sum[E1, E2]]{
		Decide: func(command Sum[C1, C2], state Pair[S1, S2]) ([]Sum[E1, E2], error) {
			if c, ok := command.First(); ok {
				events, err := d1.Decide(c, state.First)
				if err != nil {
					return nil, err
				}
				return mapSlice(events, First[E1, E2]), nil
			}
			if c, ok := command.Second(); ok {
				events, err := d2.Decide(c, state.Second)
				if err != nil {
					return nil, err
				}
				return mapSlice(events, Second[E1, E2]), nil
			}
			return nil, nil
		},
		Evolve: func(state Pair[S1, S2], event Sum[E1, E2]) Pair[S1, S2] {
			if e, ok := event.First(); ok {
				return Pair[S1, S2]{First: d1.Evolve(state.First, e), Second: state.Second}
			}
			if e, ok := event.Second(); ok {
				return Pair[S1, S2]{First: state.First, Second: d2.Evolve(state.Second, e)}
			}
			return state
		},
		InitialState: func() Pair[S1, S2] {
			return Pair[S1, S2]{First: d1.InitialState(), Second: d2.InitialState()}
		},
	}
}

// Combine3 composes three deciders. It is built from two nested Combine
// calls, re-shaped onto Sum3 and Triple.
func Combine3[C1, S1, E1, C2, S2, E2, C3, S3, E3 any](
	d1 Decider[C1, S1, E1],
	d2 Decider[C2, S2, E2],
	d3 Decider[C3, S3, E3],
) Decider[Sum3[C1, C2, C3], Triple[S1, S2, S3], Sum3[E1, E2, E3]] {
	nested := Combine(Combine(d1, d2), d3)
	flat := MapState(nested, nestTriple[S1, S2, S3], flattenTriple[S1, S2, S3])
	return MapCommand(
		MapEvent(flat, nestSum3[E1, E2, E3], flattenSum3[E1, E2, E3]),
		nestSum3[C1, C2, C3],
	)
}

// Combine4 composes four deciders: Combine3 of the first three, combined
// with the fourth.
func Combine4[C1, S1, E1, C2, S2, E2, C3, S3, E3, C4, S4, E4 any](
	d1 Decider[C1, S1, E1],
	d2 Decider[C2, S2, E2],
	d3 Decider[C3, S3, E3],
	d4 Decider[C4, S4, E4],
) Decider[Sum4[C1, C2, C3, C4], Tuple4[S1, S2, S3, S4], Sum4[E1, E2, E3, E4]] {
	nested := Combine(Combine3(d1, d2, d3), d4)
	flat := MapState(nested, nestTuple4[S1, S2, S3, S4], flattenTuple4[S1, S2, S3, S4])
	return MapCommand(
		MapEvent(flat, nestSum4[E1, E2, E3, E4], flattenSum4[E1, E2, E3, E4]),
		nestSum4[C1, C2, C3, C4],
	)
}

// Combine5 composes five deciders.
func Combine5[C1, S1, E1, C2, S2, E2, C3, S3, E3, C4, S4, E4, C5, S5, E5 any](
	d1 Decider[C1, S1, E1],
	d2 Decider[C2, S2, E2],
	d3 Decider[C3, S3, E3],
	d4 Decider[C4, S4, E4],
	d5 Decider[C5, S5, E5],
) Decider[Sum5[C1, C2, C3, C4, C5], Tuple5[S1, S2, S3, S4, S5], Sum5[E1, E2, E3, E4, E5]] {
	nested := Combine(Combine4(d1, d2, d3, d4), d5)
	flat := MapState(nested, nestTuple5[S1, S2, S3, S4, S5], flattenTuple5[S1, S2, S3, S4, S5])
	return MapCommand(
		MapEvent(flat, nestSum5[E1, E2, E3, E4, E5], flattenSum5[E1, E2, E3, E4, E5]),
		nestSum5[C1, C2, C3, C4, C5],
	)
}

// Combine6 composes six deciders.
func Combine6[C1, S1, E1, C2, S2, E2, C3, S3, E3, C4, S4, E4, C5, S5, E5, C6, S6, E6 any](
	d1 Decider[C1, S1, E1],
	d2 Decider[C2, S2, E2],
	d3 Decider[C3, S3, E3],
	d4 Decider[C4, S4, E4],
	d5 Decider[C5, S5, E5],
	d6 Decider[C6, S6, E6],
) Decider[Sum6[C1, C2, C3, C4, C5, C6], Tuple6[S1, S2, S3, S4, S5, S6], Sum6[E1, E2, E3, E4, E5, E6]] {
	nested := Combine(Combine5(d1, d2, d3, d4, d5), d6)
	flat := MapState(nested, nestTuple6[S1, S2, S3, S4, S5, S6], flattenTuple6[S1, S2, S3, S4, S5, S6])
	return MapCommand(
		MapEvent(flat, nestSum6[E1, E2, E3, E4, E5, E6], flattenSum6[E1, E2, E3, E4, E5, E6]),
		nestSum6[C1, C2, C3, C4, C5, C6],
	)
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
