package fmodel

// Saga reacts to action results (usually events) with new actions (usually
// commands for another decider). It is pure and stateless.
type Saga[AR, A any] struct {
	React func(actionResult AR) []A
}

// ComputeNewActions returns the actions the saga reacts to ar with.
func (s Saga[AR, A]) ComputeNewActions(ar AR) []A {
	return s.React(ar)
}

// MapAction transforms every action the saga produces.
func MapAction[AR, A, A2 any](s Saga[AR, A], f func(A) A2) Saga[AR, A2] {
	return Saga[AR, A2]{
		React: func(ar AR) []A2 {
			return mapSlice(s.React(ar), f)
		},
	}
}

// MapActionResult adapts the saga to a different action result type.
func MapActionResult[AR, AR2, A any](s Saga[AR, A], f func(AR2) AR) Saga[AR2, A] {
	return Saga[AR2, A]{
		React: func(ar AR2) []A {
			return s.React(f(ar))
		},
	}
}

// CombineSagas composes two sagas over disjoint action result types. Each
// result is routed to the saga owning its variant.
func CombineSagas[AR1, A1, AR2, A2 any](s1 Saga[AR1, A1], s2 Saga[AR2, A2]) Saga[Sum[AR1, AR2], Sum[A1, A2]] {
	return Saga[Sum[AR1, AR2], Sum[A1, A2]]{
		React: func(ar Sum[AR1, AR2]) []Sum[A1, A2] {
			if r, ok := ar.First(); ok {
				return mapSlice(s1.React(r), First[A1, A2])
			}
			if r, ok := ar.Second(); ok {
				return mapSlice(s2.React(r), Second[A1, A2])
			}
			return nil
		},
	}
}

// MergeSagas composes two sagas reacting to the same action result type.
// The first saga's actions come first.
func MergeSagas[AR, A1, A2 any](s1 Saga[AR, A1], s2 Saga[AR, A2]) Saga[AR, Sum[A1, A2]] {
	return Saga[AR, Sum[A1, A2]]{
		React: func(ar AR) []Sum[A1, A2] {
			first := mapSlice(s1.React(ar), First[A1, A2])
			return append(first, mapSlice(s2.React(ar), Second[A1, A2])...)
		},
	}
}
