package exprbox

import (
	"math"
	"reflect"
)

// chanNumber reports the numeric form of a channel value for the arithmetic
// ladder: plain doubles pass through, boxed numeric host values convert, and
// nil, booleans, and boxed non-numbers fail.
func chanNumber(b *ValueBox, f float64) (float64, bool) {
	switch math.Float64bits(f) {
	case nilBits, trueBits, falseBits:
		return 0, false
	}
	if i, ok := b.tableIndex(f); ok {
		return numberValue(b.values[i])
	}
	return f, true
}

// chanTruth reports the truth of a channel value for the boolean ladder:
// booleans directly, anything number-like as nonzero.
func chanTruth(b *ValueBox, f float64) (bool, bool) {
	switch math.Float64bits(f) {
	case trueBits:
		return true, true
	case falseBits:
		return false, true
	}
	n, ok := chanNumber(b, f)
	return n != 0, ok
}

func mismatch(b *ValueBox, sym Symbol, args []float64) error {
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = b.Load(a)
	}
	return &TypeMismatchError{Symbol: sym, Args: vals}
}

// defaultEvaluator resolves the engine's built-in operators and constants.
// Boolean constants and operators are registered only when boolSyms is set.
func defaultEvaluator(sym Symbol, boolSyms bool) ChannelEvaluator {
	switch sym.Kind {
	case SymbolVariable:
		switch sym.Name {
		case "nil", "null":
			return func(b *ValueBox, args []float64) (float64, error) {
				return b.Store(nil), nil
			}
		case "true", "false":
			if !boolSyms {
				return nil
			}
			v := sym.Name == "true"
			return func(b *ValueBox, args []float64) (float64, error) {
				return b.Store(v), nil
			}
		}
	case SymbolInfix:
		switch sym.Name {
		case "+":
			return evalAdd
		case "-":
			return arithOp(sym, func(l, r float64) float64 { return l - r })
		case "*":
			return arithOp(sym, func(l, r float64) float64 { return l * r })
		case "/":
			return arithOp(sym, func(l, r float64) float64 { return l / r })
		case "%":
			return arithOp(sym, math.Mod)
		case "...", "..":
			return rangeOp(sym, RangeClosed)
		case "..<":
			return rangeOp(sym, RangeHalfOpen)
		case "??":
			return evalCoalesce
		case "[]":
			return evalSubscriptOp
		case ",":
			return evalTuple
		}
		if !boolSyms {
			return nil
		}
		switch sym.Name {
		case "==":
			return equalityOp(sym, true)
		case "!=":
			return equalityOp(sym, false)
		case "<":
			return compareOp(sym, func(l, r float64) bool { return l < r })
		case "<=":
			return compareOp(sym, func(l, r float64) bool { return l <= r })
		case ">":
			return compareOp(sym, func(l, r float64) bool { return l > r })
		case ">=":
			return compareOp(sym, func(l, r float64) bool { return l >= r })
		case "&&":
			return logicalOp(sym, func(l, r bool) bool { return l && r })
		case "||":
			return logicalOp(sym, func(l, r bool) bool { return l || r })
		case "?:":
			return evalTernary
		}
	case SymbolPrefix:
		switch sym.Name {
		case "-":
			return prefixNumeric(sym, func(v float64) float64 { return -v })
		case "+":
			return prefixNumeric(sym, func(v float64) float64 { return v })
		case "!":
			if !boolSyms {
				return nil
			}
			return func(b *ValueBox, args []float64) (float64, error) {
				t, ok := chanTruth(b, args[0])
				if !ok {
					return 0, mismatch(b, sym, args)
				}
				return b.Store(!t), nil
			}
		case "..<":
			return rangeOp(sym, RangeUpTo)
		case "...":
			return rangeOp(sym, RangeThrough)
		}
	case SymbolPostfix:
		switch sym.Name {
		case "...", "..<":
			return rangeOp(sym, RangeFrom)
		}
	case SymbolFunction:
		if sym.Name == "[]" {
			return evalArrayLiteral
		}
	}
	return nil
}

// evalAdd implements +: numeric sum, string concatenation with any non-nil
// operand, and array concatenation, in that order.
func evalAdd(b *ValueBox, args []float64) (float64, error) {
	ln, lok := chanNumber(b, args[0])
	rn, rok := chanNumber(b, args[1])
	if lok && rok {
		return ln + rn, nil
	}
	lv, rv := b.Load(args[0]), b.Load(args[1])
	if ls, ok := stringValue(lv); ok {
		if rv == nil {
			// Concatenating an absent value is an error, not the text "nil".
			return 0, mismatch(b, Infix("+"), args)
		}
		return b.Store(ls + stringify(rv)), nil
	}
	if rs, ok := stringValue(rv); ok {
		if lv == nil {
			return 0, mismatch(b, Infix("+"), args)
		}
		return b.Store(stringify(lv) + rs), nil
	}
	if la, ok := arrayView(lv); ok {
		if ra, ok := arrayView(rv); ok {
			out := make([]any, 0, len(la)+len(ra))
			out = append(out, la...)
			out = append(out, ra...)
			return b.Store(out), nil
		}
	}
	return 0, mismatch(b, Infix("+"), args)
}

func arithOp(sym Symbol, f func(l, r float64) float64) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		l, lok := chanNumber(b, args[0])
		r, rok := chanNumber(b, args[1])
		if !lok || !rok {
			return 0, mismatch(b, sym, args)
		}
		return f(l, r), nil
	}
}

func compareOp(sym Symbol, f func(l, r float64) bool) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		l, lok := chanNumber(b, args[0])
		r, rok := chanNumber(b, args[1])
		if !lok || !rok {
			return 0, mismatch(b, sym, args)
		}
		return b.Store(f(l, r)), nil
	}
}

func logicalOp(sym Symbol, f func(l, r bool) bool) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		l, lok := chanTruth(b, args[0])
		r, rok := chanTruth(b, args[1])
		if !lok || !rok {
			return 0, mismatch(b, sym, args)
		}
		return b.Store(f(l, r)), nil
	}
}

func prefixNumeric(sym Symbol, f func(v float64) float64) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		v, ok := chanNumber(b, args[0])
		if !ok {
			return 0, mismatch(b, sym, args)
		}
		return f(v), nil
	}
}

func equalityOp(sym Symbol, want bool) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		lv, rv := b.Load(args[0]), b.Load(args[1])
		eq, err := structuralEqual(lv, rv)
		if err != nil {
			return 0, &TypeMismatchError{
				Symbol:       sym,
				Args:         []any{lv, rv},
				Incomparable: lv != nil && rv != nil && reflect.TypeOf(lv) == reflect.TypeOf(rv),
			}
		}
		return b.Store(eq == want), nil
	}
}

// evalTernary selects a branch by the numeric truth of the condition and
// propagates the selected branch's channel value unchanged. Both branches
// were already evaluated by the tree walk; the unselected value is dropped.
// The two-argument form is the elvis operator a ?: b.
func evalTernary(b *ValueBox, args []float64) (float64, error) {
	t, ok := chanTruth(b, args[0])
	if !ok {
		return 0, mismatch(b, Infix("?:"), args)
	}
	switch len(args) {
	case 2:
		if t {
			return args[0], nil
		}
		return args[1], nil
	case 3:
		if t {
			return args[1], nil
		}
		return args[2], nil
	default:
		return 0, mismatch(b, Infix("?:"), args)
	}
}

// evalCoalesce returns the right operand when the left is nil, with neither
// operand re-encoded.
func evalCoalesce(b *ValueBox, args []float64) (float64, error) {
	if math.Float64bits(args[0]) == nilBits {
		return args[1], nil
	}
	return args[0], nil
}

func evalTuple(b *ValueBox, args []float64) (float64, error) {
	t := make(Tuple, len(args))
	for i, a := range args {
		t[i] = b.Load(a)
	}
	return b.Store(t), nil
}

func evalArrayLiteral(b *ValueBox, args []float64) (float64, error) {
	vs := make([]any, len(args))
	for i, a := range args {
		vs[i] = b.Load(a)
	}
	return b.Store(vs), nil
}

// rangeOp constructs a range value for one of the five shapes. Operands must
// be all integers or all string positions; closed ranges require lo <= hi
// and half-open ranges lo < hi.
func rangeOp(sym Symbol, shape RangeShape) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		vals := make([]any, len(args))
		for i, a := range args {
			vals[i] = b.Load(a)
		}
		if r, ok := intRangeOf(shape, vals); ok {
			if shape == RangeClosed && r.Lo > r.Hi {
				return 0, &InvalidRangeError{Lower: r.Lo, Upper: r.Hi}
			}
			if shape == RangeHalfOpen && r.Lo >= r.Hi {
				return 0, &InvalidRangeError{Lower: r.Lo, Upper: r.Hi}
			}
			return b.Store(r), nil
		}
		if r, ok := indexRangeOf(shape, vals); ok {
			if shape == RangeClosed && r.Lo.Offset > r.Hi.Offset {
				return 0, &InvalidRangeError{Lower: r.Lo, Upper: r.Hi}
			}
			if shape == RangeHalfOpen && r.Lo.Offset >= r.Hi.Offset {
				return 0, &InvalidRangeError{Lower: r.Lo, Upper: r.Hi}
			}
			return b.Store(r), nil
		}
		return 0, mismatch(b, sym, args)
	}
}

func intRangeOf(shape RangeShape, vals []any) (IntRange, bool) {
	r := IntRange{Shape: shape}
	for i, v := range vals {
		n, ok := integerValue(v)
		if !ok {
			return r, false
		}
		switch {
		case i == 0 && shape.hasLower():
			r.Lo = n
		default:
			r.Hi = n
		}
	}
	return r, true
}

func indexRangeOf(shape RangeShape, vals []any) (IndexRange, bool) {
	r := IndexRange{Shape: shape}
	for i, v := range vals {
		n, ok := v.(StringIndex)
		if !ok {
			return r, false
		}
		switch {
		case i == 0 && shape.hasLower():
			r.Lo = n
		default:
			r.Hi = n
		}
	}
	return r, true
}
