package exprbox

import "strconv"

// RangeShape identifies one of the five range forms an expression can
// construct: a...b, a..<b, a..., ..<b, and ...b.
type RangeShape int8

const (
	// RangeClosed is a...b, including both bounds.
	RangeClosed RangeShape = iota + 1
	// RangeHalfOpen is a..<b, excluding the upper bound.
	RangeHalfOpen
	// RangeFrom is a..., from the lower bound to the end of the container.
	RangeFrom
	// RangeUpTo is ..<b, from the start of the container excluding b.
	RangeUpTo
	// RangeThrough is ...b, from the start of the container including b.
	RangeThrough
)

func (s RangeShape) hasLower() bool {
	return s == RangeClosed || s == RangeHalfOpen || s == RangeFrom
}

func (s RangeShape) hasUpper() bool {
	return s != RangeFrom
}

// IntRange is a range over integer offsets. Bounds a shape does not use are
// zero. IntRange values compare structurally.
type IntRange struct {
	Shape  RangeShape
	Lo, Hi int
}

func (r IntRange) String() string {
	return rangeString(r.Shape, strconv.Itoa(r.Lo), strconv.Itoa(r.Hi))
}

// StringIndex is an opaque ordered position within a string, distinct from a
// logical character offset. It addresses the byte at which a character
// starts.
type StringIndex struct {
	Offset int
}

func (i StringIndex) String() string {
	return "index(" + strconv.Itoa(i.Offset) + ")"
}

// IndexRange is a range over string positions.
type IndexRange struct {
	Shape  RangeShape
	Lo, Hi StringIndex
}

func (r IndexRange) String() string {
	return rangeString(r.Shape, r.Lo.String(), r.Hi.String())
}

func rangeString(s RangeShape, lo, hi string) string {
	switch s {
	case RangeClosed:
		return lo + "..." + hi
	case RangeHalfOpen:
		return lo + "..<" + hi
	case RangeFrom:
		return lo + "..."
	case RangeUpTo:
		return "..<" + hi
	case RangeThrough:
		return "..." + hi
	default:
		return "invalid range"
	}
}

// Tuple is the value produced by a comma expression such as (a, b). Tuples
// of two through six structurally comparable elements compare structurally.
type Tuple []any

// StructuralEq is the capability an opaque host value opts into to take part
// in == and != comparisons. Values that are not numbers, booleans, strings,
// arrays, dictionaries, tuples, or ranges, and that do not implement
// StructuralEq, are incomparable and comparing them is a type mismatch.
type StructuralEq interface {
	StructuralEqual(other any) bool
}
