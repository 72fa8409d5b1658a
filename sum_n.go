package fmodel

// Sum4 is a tagged union of four variants.
type Sum4[A, B, C, D any] struct {
	tag    variant
	first  A
	second B
	third  C
	fourth D
}

func First4[A, B, C, D any](a A) Sum4[A, B, C, D] {
	return Sum4[A, B, C, D]{tag: variantFirst, first: a}
}

func Second4[A, B, C, D any](b B) Sum4[A, B, C, D] {
	return Sum4[A, B, C, D]{tag: variantSecond, second: b}
}

func Third4[A, B, C, D any](c C) Sum4[A, B, C, D] {
	return Sum4[A, B, C, D]{tag: variantThird, third: c}
}

func Fourth4[A, B, C, D any](d D) Sum4[A, B, C, D] {
	return Sum4[A, B, C, D]{tag: variantFourth, fourth: d}
}

func (s Sum4[A, B, C, D]) First() (A, bool)  { return s.first, s.tag == variantFirst }
func (s Sum4[A, B, C, D]) Second() (B, bool) { return s.second, s.tag == variantSecond }
func (s Sum4[A, B, C, D]) Third() (C, bool)  { return s.third, s.tag == variantThird }
func (s Sum4[A, B, C, D]) Fourth() (D, bool) { return s.fourth, s.tag == variantFourth }

// Identifier delegates to the active variant.
func (s Sum4[A, B, C, D]) Identifier() string {
	switch s.tag {
	case variantFirst:
		return IdentifierOf(s.first)
	case variantSecond:
		return IdentifierOf(s.second)
	case variantThird:
		return IdentifierOf(s.third)
	case variantFourth:
		return IdentifierOf(s.fourth)
	default:
		return ""
	}
}

// Sum5 is a tagged union of five variants.
type Sum5[A, B, C, D, E any] struct {
	tag    variant
	first  A
	second B
	third  C
	fourth D
	fifth  E
}

func First5[A, B, C, D, E any](a A) Sum5[A, B, C, D, E] {
	return Sum5[A, B, C, D, E]{tag: variantFirst, first: a}
}

func Second5[A, B, C, D, E any](b B) Sum5[A, B, C, D, E] {
	return Sum5[A, B, C, D, E]{tag: variantSecond, second: b}
}

func Third5[A, B, C, D, E any](c C) Sum5[A, B, C, D, E] {
	return Sum5[A, B, C, D, E]{tag: variantThird, third: c}
}

func Fourth5[A, B, C, D, E any](d D) Sum5[A, B, C, D, E] {
	return Sum5[A, B, C, D, E]{tag: variantFourth, fourth: d}
}

func Fifth5[A, B, C, D, E any](e E) Sum5[A, B, C, D, E] {
	return Sum5[A, B, C, D, E]{tag: variantFifth, fifth: e}
}

func (s Sum5[A, B, C, D, E]) First() (A, bool)  { return s.first, s.tag == variantFirst }
func (s Sum5[A, B, C, D, E]) Second() (B, bool) { return s.second, s.tag == variantSecond }
func (s Sum5[A, B, C, D, E]) Third() (C, bool)  { return s.third, s.tag == variantThird }
func (s Sum5[A, B, C, D, E]) Fourth() (D, bool) { return s.fourth, s.tag == variantFourth }
func (s Sum5[A, B, C, D, E]) Fifth() (E, bool)  { return s.fifth, s.tag == variantFifth }

// Identifier delegates to the active variant.
func (s Sum5[A, B, C, D, E]) Identifier() string {
	switch s.tag {
	case variantFirst:
		return IdentifierOf(s.first)
	case variantSecond:
		return IdentifierOf(s.second)
	case variantThird:
		return IdentifierOf(s.third)
	case variantFourth:
		return IdentifierOf(s.fourth)
	case variantFifth:
		return IdentifierOf(s.fifth)
	default:
		return ""
	}
}

// Sum6 is a tagged union of six variants.
type Sum6[A, B, C, D, E, F any] struct {
	tag    variant
	first  A
	second B
	third  C
	fourth D
	fifth  E
	sixth  F
}

func First6[A, B, C, D, E, F any](a A) Sum6[A, B, C, D, E, F] {
	return Sum6[A, B, C, D, E, F]{tag: variantFirst, first: a}
}

func Second6[A, B, C, D, E, F any](b B) Sum6[A, B, C, D, E, F] {
	return Sum6[A, B, C, D, E, F]{tag: variantSecond, second: b}
}

func Third6[A, B, C, D, E, F any](c C) Sum6[A, B, C, D, E, F] {
	return Sum6[A, B, C, D, E, F]{tag: variantThird, third: c}
}

func Fourth6[A, B, C, D, E, F any](d D) Sum6[A, B, C, D, E, F] {
	return Sum6[A, B, C, D, E, F]{tag: variantFourth, fourth: d}
}

func Fifth6[A, B, C, D, E, F any](e E) Sum6[A, B, C, D, E, F] {
	return Sum6[A, B, C, D, E, F]{tag: variantFifth, fifth: e}
}

func Sixth6[A, B, C, D, E, F any](f F) Sum6[A, B, C, D, E, F] {
	return Sum6[A, B, C, D, E, F]{tag: variantSixth, sixth: f}
}

func (s Sum6[A, B, C, D, E, F]) First() (A, bool)  { return s.first, s.tag == variantFirst }
func (s Sum6[A, B, C, D, E, F]) Second() (B, bool) { return s.second, s.tag == variantSecond }
func (s Sum6[A, B, C, D, E, F]) Third() (C, bool)  { return s.third, s.tag == variantThird }
func (s Sum6[A, B, C, D, E, F]) Fourth() (D, bool) { return s.fourth, s.tag == variantFourth }
func (s Sum6[A, B, C, D, E, F]) Fifth() (E, bool)  { return s.fifth, s.tag == variantFifth }
func (s Sum6[A, B, C, D, E, F]) Sixth() (F, bool)  { return s.sixth, s.tag == variantSixth }

// Identifier delegates to the active variant.
func (s Sum6[A, B, C, D, E, F]) Identifier() string {
	switch s.tag {
	case variantFirst:
		return IdentifierOf(s.first)
	case variantSecond:
		return IdentifierOf(s.second)
	case variantThird:
		return IdentifierOf(s.third)
	case variantFourth:
		return IdentifierOf(s.fourth)
	case variantFifth:
		return IdentifierOf(s.fifth)
	case variantSixth:
		return IdentifierOf(s.sixth)
	default:
		return ""
	}
}

// Tuple4 is the product state of four combined deciders or views.
type Tuple4[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Tuple5 is the product state of five combined deciders or views.
type Tuple5[A, B, C, D, E any] struct {
	First  A
	Second B
	Third  C
	Fourth D
	Fifth  E
}

// Tuple6 is the product state of six combined deciders or views.
type Tuple6[A, B, C, D, E, F any] struct {
	First  A
	Second B
	Third  C
	Fourth D
	Fifth  E
	Sixth  F
}

// The wider sums and tuples are built by appending one variant (or field)
// to the next narrower shape. nestN splits the last one off, flattenN puts
// it back.

func nestSum4[A, B, C, D any](s Sum4[A, B, C, D]) Sum[Sum3[A, B, C], D] {
	switch s.tag {
	case variantFirst:
		return First[Sum3[A, B, C], D](First3[A, B, C](s.first))
	case variantSecond:
		return First[Sum3[A, B, C], D](Second3[A, B, C](s.second))
	case variantThird:
		return First[Sum3[A, B, C], D](Third3[A, B](s.third))
	case variantFourth:
		return Second[Sum3[A, B, C]](s.fourth)
	default:
		return Sum[Sum3[A, B, C], D]{}
	}
}

func flattenSum4[A, B, C, D any](s Sum[Sum3[A, B, C], D]) Sum4[A, B, C, D] {
	if inner, ok := s.First(); ok {
		return Sum4[A, B, C, D]{tag: inner.tag, first: inner.first, second: inner.second, third: inner.third}
	}
	if d, ok := s.Second(); ok {
		return Fourth4[A, B, C](d)
	}
	return Sum4[A, B, C, D]{}
}

func nestSum5[A, B, C, D, E any](s Sum5[A, B, C, D, E]) Sum[Sum4[A, B, C, D], E] {
	switch s.tag {
	case variantNone:
		return Sum[Sum4[A, B, C, D], E]{}
	case variantFifth:
		return Second[Sum4[A, B, C, D]](s.fifth)
	default:
		return First[Sum4[A, B, C, D], E](Sum4[A, B, C, D]{
			tag: s.tag, first: s.first, second: s.second, third: s.third, fourth: s.fourth,
		})
	}
}

func flattenSum5[A, B, C, D, E any](s Sum[Sum4[A, B, C, D], E]) Sum5[A, B, C, D, E] {
	if inner, ok := s.First(); ok {
		return Sum5[A, B, C, D, E]{
			tag: inner.tag, first: inner.first, second: inner.second, third: inner.third, fourth: inner.fourth,
		}
	}
	if e, ok := s.Second(); ok {
		return Fifth5[A, B, C, D](e)
	}
	return Sum5[A, B, C, D, E]{}
}

func nestSum6[A, B, C, D, E, F any](s Sum6[A, B, C, D, E, F]) Sum[Sum5[A, B, C, D, E], F] {
	switch s.tag {
	case variantNone:
		return Sum[Sum5[A, B, C, D, E], F]{}
	case variantSixth:
		return Second[Sum5[A, B, C, D, E]](s.sixth)
	default:
		return First[Sum5[A, B, C, D, E], F](Sum5[A, B, C, D, E]{
			tag: s.tag, first: s.first, second: s.second, third: s.third, fourth: s.fourth, fifth: s.fifth,
		})
	}
}

func flattenSum6[A, B, C, D, E, F any](s Sum[Sum5[A, B, C, D, E], F]) Sum6[A, B, C, D, E, F] {
	if inner, ok := s.First(); ok {
		return Sum6[A, B, C, D, E, F]{
			tag: inner.tag, first: inner.first, second: inner.second, third: inner.third, fourth: inner.fourth, fifth: inner.fifth,
		}
	}
	if f, ok := s.Second(); ok {
		return Sixth6[A, B, C, D, E](f)
	}
	return Sum6[A, B, C, D, E, F]{}
}

func nestTuple4[A, B, C, D any](t Tuple4[A, B, C, D]) Pair[Triple[A, B, C], D] {
	return Pair[Triple[A, B, C], D]{First: Triple[A, B, C]{First: t.First, Second: t.Second, Third: t.Third}, Second: t.Fourth}
}

func flattenTuple4[A, B, C, D any](p Pair[Triple[A, B, C], D]) Tuple4[A, B, C, D] {
	return Tuple4[A, B, C, D]{First: p.First.First, Second: p.First.Second, Third: p.First.Third, Fourth: p.Second}
}

func nestTuple5[A, B, C, D, E any](t Tuple5[A, B, C, D, E]) Pair[Tuple4[A, B, C, D], E] {
	return Pair[Tuple4[A, B, C, D], E]{
		First:  Tuple4[A, B, C, D]{First: t.First, Second: t.Second, Third: t.Third, Fourth: t.Fourth},
		Second: t.Fifth,
	}
}

func flattenTuple5[A, B, C, D, E any](p Pair[Tuple4[A, B, C, D], E]) Tuple5[A, B, C, D, E] {
	return Tuple5[A, B, C, D, E]{
		First: p.First.First, Second: p.First.Second, Third: p.First.Third, Fourth: p.First.Fourth, Fifth: p.Second,
	}
}

func nestTuple6[A, B, C, D, E, F any](t Tuple6[A, B, C, D, E, F]) Pair[Tuple5[A, B, C, D, E], F] {
	return Pair[Tuple5[A, B, C, D, E], F]{
		First:  Tuple5[A, B, C, D, E]{First: t.First, Second: t.Second, Third: t.Third, Fourth: t.Fourth, Fifth: t.Fifth},
		Second: t.Sixth,
	}
}

func flattenTuple6[A, B, C, D, E, F any](p Pair[Tuple5[A, B, C, D, E], F]) Tuple6[A, B, C, D, E, F] {
	return Tuple6[A, B, C, D, E, F]{
		First: p.First.First, Second: p.First.Second, Third: p.First.Third, Fourth: p.First.Fourth, Fifth: p.First.Fifth, Sixth: p.Second,
	}
}
