package exprbox

import (
	"reflect"
	"unicode/utf8"
)

// evalSubscriptOp is the evaluator for the general subscript form
// expr[index], where the container is itself an expression.
func evalSubscriptOp(b *ValueBox, args []float64) (float64, error) {
	return subscriptChannel(b, Infix("[]"), args[0], args[1])
}

func subscriptChannel(b *ValueBox, sym Symbol, container, index float64) (float64, error) {
	v, err := subscriptValue(sym, b.Load(container), b.Load(index))
	if err != nil {
		return 0, err
	}
	return b.Store(v), nil
}

// subscriptValue resolves container[index] by the runtime type of the
// container: arrays take integer offsets and integer ranges, dictionaries
// take keys of their key type, and strings take logical character offsets,
// string positions, and ranges of either. Everything else is not
// subscriptable.
func subscriptValue(sym Symbol, container, index any) (any, error) {
	if _, ok := index.(Tuple); ok {
		// No built-in container accepts a multi-argument index.
		return nil, &TypeMismatchError{Symbol: sym, Args: []any{container, index}}
	}
	if s, ok := stringValue(container); ok {
		return subscriptString(sym, s, index)
	}
	if elems, ok := arrayView(container); ok {
		return subscriptArray(sym, elems, index)
	}
	if rv := reflect.ValueOf(container); rv.Kind() == reflect.Map {
		return subscriptMap(sym, rv, index)
	}
	return nil, &IllegalSubscriptError{Symbol: sym, Value: container}
}

func subscriptArray(sym Symbol, elems []any, index any) (any, error) {
	switch index := index.(type) {
	case IntRange:
		lo, hi, bad := resolveSpan(index, len(elems))
		if bad != nil {
			return nil, &ArrayBoundsError{Symbol: sym, Index: *bad}
		}
		return elems[lo:hi], nil
	case IndexRange:
		return nil, &TypeMismatchError{Symbol: sym, Args: []any{elems, index}}
	}
	if i, ok := integerValue(index); ok {
		if i < 0 || i >= len(elems) {
			return nil, &ArrayBoundsError{Symbol: sym, Index: i}
		}
		return elems[i], nil
	}
	return nil, &TypeMismatchError{Symbol: sym, Args: []any{elems, index}}
}

// resolveSpan turns a range into concrete slice bounds over a container of
// count elements. On failure it reports the specific offending bound.
func resolveSpan(r IntRange, count int) (lo, hi int, bad *int) {
	lo, hi = 0, count
	if r.Shape.hasLower() {
		lo = r.Lo
		if lo < 0 || lo > count {
			return 0, 0, &r.Lo
		}
	}
	if r.Shape.hasUpper() {
		hi = r.Hi
		if r.Shape == RangeClosed || r.Shape == RangeThrough {
			hi++
		}
		if hi > count {
			return 0, 0, &r.Hi
		}
	}
	if lo > hi || hi <= 0 && r.Shape.hasUpper() && !r.Shape.hasLower() {
		// ..<0 and similar spans that cannot include any element report
		// their explicit bound.
		return 0, 0, offendingBound(r)
	}
	return lo, hi, nil
}

func offendingBound(r IntRange) *int {
	if r.Shape.hasLower() {
		return &r.Lo
	}
	return &r.Hi
}

func subscriptMap(sym Symbol, rv reflect.Value, index any) (any, error) {
	kt := rv.Type().Key()
	kv, ok := projectValue(index, kt)
	if !ok {
		return nil, &TypeMismatchError{Symbol: sym, Args: []any{rv.Interface(), index}}
	}
	out := rv.MapIndex(kv)
	if !out.IsValid() {
		// Missing keys look up as absent, like an optional.
		return nil, nil
	}
	return out.Interface(), nil
}

func subscriptString(sym Symbol, s string, index any) (any, error) {
	switch index := index.(type) {
	case StringIndex:
		if !validStringIndex(s, index) {
			return nil, &StringBoundsError{String: s, Index: index}
		}
		r, _ := utf8.DecodeRuneInString(s[index.Offset:])
		return string(r), nil
	case IndexRange:
		return sliceStringByIndex(sym, s, index)
	case IntRange:
		return sliceStringByOffset(sym, s, index)
	}
	if i, ok := integerValue(index); ok {
		off, ok := byteOffset(s, i)
		if !ok {
			return nil, &StringBoundsError{String: s, Index: i}
		}
		r, _ := utf8.DecodeRuneInString(s[off:])
		return string(r), nil
	}
	return nil, &TypeMismatchError{Symbol: sym, Args: []any{s, index}}
}

// byteOffset converts a logical character offset into a byte offset,
// failing when the offset is outside [0, count).
func byteOffset(s string, i int) (int, bool) {
	if i < 0 {
		return 0, false
	}
	n := 0
	for off := range s {
		if n == i {
			return off, true
		}
		n++
	}
	return 0, false
}

// validStringIndex reports whether a position is inside the string and on a
// character boundary.
func validStringIndex(s string, i StringIndex) bool {
	return i.Offset >= 0 && i.Offset < len(s) && utf8.RuneStart(s[i.Offset])
}

func sliceStringByOffset(sym Symbol, s string, r IntRange) (any, error) {
	count := utf8.RuneCountInString(s)
	lo, hi, bad := resolveSpan(r, count)
	if bad != nil {
		return nil, &StringBoundsError{String: s, Index: *bad}
	}
	start, ok := runeSlicePos(s, lo)
	if !ok {
		return nil, &StringBoundsError{String: s, Index: lo}
	}
	end, ok := runeSlicePos(s, hi)
	if !ok {
		return nil, &StringBoundsError{String: s, Index: hi}
	}
	return s[start:end], nil
}

// runeSlicePos converts a rune count into a byte position, where a count
// equal to the length of the string maps to len(s).
func runeSlicePos(s string, n int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	i := 0
	for off := range s {
		if i == n {
			return off, true
		}
		i++
	}
	if i == n {
		return len(s), true
	}
	return 0, false
}

func sliceStringByIndex(sym Symbol, s string, r IndexRange) (any, error) {
	lo, hi := 0, len(s)
	if r.Shape.hasLower() {
		lo = r.Lo.Offset
		if lo < 0 || lo > len(s) {
			return nil, &StringBoundsError{String: s, Index: r.Lo}
		}
	}
	if r.Shape.hasUpper() {
		hi = r.Hi.Offset
		if r.Shape == RangeClosed || r.Shape == RangeThrough {
			if !validStringIndex(s, r.Hi) {
				return nil, &StringBoundsError{String: s, Index: r.Hi}
			}
			_, sz := utf8.DecodeRuneInString(s[hi:])
			hi += sz
		}
		if hi > len(s) {
			return nil, &StringBoundsError{String: s, Index: r.Hi}
		}
	}
	if lo > hi || hi <= 0 && r.Shape == RangeUpTo {
		if r.Shape.hasLower() {
			return nil, &StringBoundsError{String: s, Index: r.Lo}
		}
		return nil, &StringBoundsError{String: s, Index: r.Hi}
	}
	return s[lo:hi], nil
}
