package fmodel

import "fmt"

type variant uint8

const (
	variantNone variant = iota
	variantFirst
	variantSecond
	variantThird
	variantFourth
	variantFifth
	variantSixth
)

// Sum is a tagged union holding either an A or a B.
//
// The zero value holds neither variant. Combined deciders and views treat it
// as a value that belongs to no sub-component: it produces no events and
// leaves every sub-state unchanged.
type Sum[A, B any] struct {
	tag    variant
	first  A
	second B
}

// First wraps a into the first variant of a Sum.
func First[A, B any](a A) Sum[A, B] {
	return Sum[A, B]{tag: variantFirst, first: a}
}

// Second wraps b into the second variant of a Sum.
func Second[A, B any](b B) Sum[A, B] {
	return Sum[A, B]{tag: variantSecond, second: b}
}

// First returns the first variant and true if s holds it.
func (s Sum[A, B]) First() (A, bool) {
	return s.first, s.tag == variantFirst
}

// Second returns the second variant and true if s holds it.
func (s Sum[A, B]) Second() (B, bool) {
	return s.second, s.tag == variantSecond
}

// Identifier delegates to the active variant.
func (s Sum[A, B]) Identifier() string {
	switch s.tag {
	case variantFirst:
		return IdentifierOf(s.first)
	case variantSecond:
		return IdentifierOf(s.second)
	default:
		return ""
	}
}

func (s Sum[A, B]) String() string {
	switch s.tag {
	case variantFirst:
		return fmt.Sprintf("First(%v)", s.first)
	case variantSecond:
		return fmt.Sprintf("Second(%v)", s.second)
	default:
		return "None"
	}
}

// Sum3 is a tagged union of three variants.
type Sum3[A, B, C any] struct {
	tag    variant
	first  A
	second B
	third  C
}

func First3[A, B, C any](a A) Sum3[A, B, C] {
	return Sum3[A, B, C]{tag: variantFirst, first: a}
}

func Second3[A, B, C any](b B) Sum3[A, B, C] {
	return Sum3[A, B, C]{tag: variantSecond, second: b}
}

func Third3[A, B, C any](c C) Sum3[A, B, C] {
	return Sum3[A, B, C]{tag: variantThird, third: c}
}

func (s Sum3[A, B, C]) First() (A, bool)  { return s.first, s.tag == variantFirst }
func (s Sum3[A, B, C]) Second() (B, bool) { return s.second, s.tag == variantSecond }
func (s Sum3[A, B, C]) Third() (C, bool)  { return s.third, s.tag == variantThird }

// Identifier delegates to the active variant.
func (s Sum3[A, B, C]) Identifier() string {
	switch s.tag {
	case variantFirst:
		return IdentifierOf(s.first)
	case variantSecond:
		return IdentifierOf(s.second)
	case variantThird:
		return IdentifierOf(s.third)
	default:
		return ""
	}
}

// Pair is the product state of two combined deciders or views.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the product state of three combined deciders or views.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

func nestSum3[A, B, C any](s Sum3[A, B, C]) Sum[Sum[A, B], C] {
	switch s.tag {
	case variantFirst:
		return First[Sum[A, B], C](First[A, B](s.first))
	case variantSecond:
		return First[Sum[A, B], C](Second[A, B](s.second))
	case variantThird:
		return Second[Sum[A, B]](s.third)
	default:
		return Sum[Sum[A, B], C]{}
	}
}

func flattenSum3[A, B, C any](s Sum[Sum[A, B], C]) Sum3[A, B, C] {
	if inner, ok := s.First(); ok {
		if a, ok := inner.First(); ok {
			return First3[A, B, C](a)
		}
		if b, ok := inner.Second(); ok {
			return Second3[A, B, C](b)
		}
		return Sum3[A, B, C]{}
	}
	if c, ok := s.Second(); ok {
		return Third3[A, B](c)
	}
	return Sum3[A, B, C]{}
}

func nestTriple[A, B, C any](t Triple[A, B, C]) Pair[Pair[A, B], C] {
	return Pair[Pair[A, B], C]{First: Pair[A, B]{First: t.First, Second: t.Second}, Second: t.Third}
}

func flattenTriple[A, B, C any](p Pair[Pair[A, B], C]) Triple[A, B, C] {
	return Triple[A, B, C]{First: p.First.First, Second: p.First.Second, Third: p.Second}
}
