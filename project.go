package exprbox

import (
	"math"
	"reflect"
)

// EvaluateAs evaluates the expression and projects the result to T. The
// projection is the same coercion ladder evaluation uses internally: numbers
// convert between numeric kinds, any non-nil value converts to a string
// kind, numbers and booleans convert to each other, nil converts to any
// nilable kind, and slices convert element by element. A result that cannot
// reach T fails with ResultTypeMismatchError.
func EvaluateAs[T any](e *Expression) (T, error) {
	var zero T
	v, err := e.Evaluate()
	if err != nil {
		return zero, err
	}
	t := reflect.TypeOf(&zero).Elem()
	rv, ok := projectValue(v, t)
	if !ok {
		return zero, &ResultTypeMismatchError{Type: t, Value: v}
	}
	return rv.Interface().(T), nil
}

// projectValue converts a decoded value to the target type, reporting
// whether the conversion is possible.
func projectValue(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t || rv.Type().AssignableTo(t) {
		if rv.Type() != t && t.Kind() == reflect.Interface {
			out := reflect.New(t).Elem()
			out.Set(rv)
			return out, true
		}
		return rv, true
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		if f, ok := numberFrom(v); ok {
			return reflect.ValueOf(f).Convert(t), true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f, ok := numberFrom(v); ok && wholeInRange(f, t) {
			return reflect.ValueOf(int64(f)).Convert(t), true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if f, ok := numberFrom(v); ok && f >= 0 && wholeInRange(f, t) {
			return reflect.ValueOf(uint64(f)).Convert(t), true
		}
	case reflect.Bool:
		if f, ok := numberValue(v); ok {
			return reflect.ValueOf(f != 0), true
		}
	case reflect.String:
		// Any non-nil value has a string rendering.
		return reflect.ValueOf(stringify(v)).Convert(t), true
	case reflect.Slice:
		if elems, ok := arrayView(v); ok {
			out := reflect.MakeSlice(t, len(elems), len(elems))
			for i, e := range elems {
				ev, ok := projectValue(e, t.Elem())
				if !ok {
					return reflect.Value{}, false
				}
				out.Index(i).Set(ev)
			}
			return out, true
		}
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind() {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

// numberFrom is numberValue extended to booleans, which project to 1 and 0
// at the result boundary.
func numberFrom(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return numberValue(v)
}

// wholeInRange reports whether f is a whole number representable by the
// integer kind of t.
func wholeInRange(f float64, t reflect.Type) bool {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return false
	}
	bits := t.Bits()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		min := -math.Pow(2, float64(bits-1))
		max := math.Pow(2, float64(bits-1))
		return f >= min && f < max
	default:
		return f < math.Pow(2, float64(bits))
	}
}
