package exprbox

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// numberValue reports the float64 form of a decoded number-like host value.
// Booleans are not number-like here; the truth ladder handles them.
func numberValue(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uintptr:
		return float64(v), true
	default:
		return 0, false
	}
}

// integerValue reports the exact integer form of a decoded value, failing on
// fractional or unsafely large numbers.
func integerValue(v any) (int, bool) {
	f, ok := numberValue(v)
	if !ok || f != float64(int64(f)) || f <= -maxSafeInteger || f >= maxSafeInteger {
		return 0, false
	}
	return int(f), true
}

// stringValue reports the string form of a string-like value.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// arrayView reports the elements of an array-like value: []any directly, any
// other slice or array kind through reflection. Strings and tuples are not
// array-like.
func arrayView(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case Tuple, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}

// stringify renders a value the way string concatenation and string-typed
// result projection see it. Strings render without quotes.
func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		if f, ok := numberValue(v); ok {
			return formatNumber(f)
		}
		return fmt.Sprintf("%v", v)
	}
}

// formatValue renders a value for error messages. Strings render quoted so
// that "4" and 4 are distinguishable.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		return formatList(v, "[", "]")
	case Tuple:
		return formatList(v, "(", ")")
	default:
		if f, ok := numberValue(v); ok {
			return formatNumber(f)
		}
		return fmt.Sprintf("%v", v)
	}
}

func formatList(vs []any, open, close string) string {
	var b strings.Builder
	b.WriteString(open)
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatValue(v))
	}
	b.WriteString(close)
	return b.String()
}

// errIncomparable is a marker returned by structuralEqual when a value does
// not support structural equality; equality dispatch converts it to a
// TypeMismatchError carrying the operands.
type errIncomparable struct {
	value any
}

func (e errIncomparable) Error() string {
	return fmt.Sprintf("values of type %T do not support structural equality", e.value)
}

// structuralEqual implements the equality ladder over decoded values: nils,
// numbers, booleans, strings, arrays of comparables, dictionaries of
// comparables, 2- through 6-element tuples, ranges, StructuralEq
// implementors, and finally plain comparable host types. Values with
// matching capabilities but different shapes are unequal, not errors;
// values lacking any equality capability produce errIncomparable.
func structuralEqual(a, b any) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	if af, ok := numberValue(a); ok {
		bf, ok := numberValue(b)
		// NaN compares unequal to everything, itself included.
		return ok && af == bf, nil
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb, nil
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs, nil
	}
	if se, ok := a.(StructuralEq); ok {
		return se.StructuralEqual(b), nil
	}
	if se, ok := b.(StructuralEq); ok {
		return se.StructuralEqual(a), nil
	}
	if at, ok := a.(Tuple); ok {
		bt, ok := b.(Tuple)
		if !ok {
			return false, nil
		}
		if len(at) < 2 || len(at) > 6 {
			return false, errIncomparable{a}
		}
		return equalElems(at, bt)
	}
	if av, ok := arrayView(a); ok {
		bv, ok := arrayView(b)
		if !ok {
			return false, nil
		}
		return equalElems(av, bv)
	}
	if eq, ok, err := equalMaps(a, b); ok {
		return eq, err
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if !ta.Comparable() {
		return false, errIncomparable{a}
	}
	if !tb.Comparable() {
		return false, errIncomparable{b}
	}
	return a == b, nil
}

func equalElems(a, b []any) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := structuralEqual(a[i], b[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// equalMaps compares two dictionary-like values key by key. The second
// result reports whether either value is a map; a map and a non-map are
// unequal, not an error.
func equalMaps(a, b any) (bool, bool, error) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != reflect.Map || rb.Kind() != reflect.Map {
		return false, ra.Kind() == reflect.Map || rb.Kind() == reflect.Map, nil
	}
	if ra.Type().Key() != rb.Type().Key() || ra.Len() != rb.Len() {
		return false, true, nil
	}
	iter := ra.MapRange()
	for iter.Next() {
		bv := rb.MapIndex(iter.Key())
		if !bv.IsValid() {
			return false, true, nil
		}
		eq, err := structuralEqual(iter.Value().Interface(), bv.Interface())
		if err != nil || !eq {
			return false, true, err
		}
	}
	return true, true, nil
}
