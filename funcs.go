package exprbox

import "math"

// MathSymbols returns a symbol table of common mathematical functions and
// constants, suitable for passing to Symbols, typically together with
// PureSymbols so calls on literal arguments fold at build time.
//
// Functions of one argument: sqrt, cbrt, floor, ceil, round, abs, cos, sin,
// tan, acos, asin, atan, exp, log, log2, log10. Functions of two arguments:
// pow, atan2, mod. min and max accept any number of arguments. pi and e are
// variables.
func MathSymbols() map[Symbol]SymbolEvaluator {
	m := map[Symbol]SymbolEvaluator{
		Variable("pi"):            constant(math.Pi),
		Variable("e"):             constant(math.E),
		Function("pow", 2):        math2(Function("pow", 2), math.Pow),
		Function("atan2", 2):      math2(Function("atan2", 2), math.Atan2),
		Function("mod", 2):        math2(Function("mod", 2), math.Mod),
		Function("min", AnyArity): fold(Function("min", AnyArity), math.Min),
		Function("max", AnyArity): fold(Function("max", AnyArity), math.Max),
	}
	one := map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"round": math.Round,
		"abs":   math.Abs,
		"cos":   math.Cos,
		"sin":   math.Sin,
		"tan":   math.Tan,
		"acos":  math.Acos,
		"asin":  math.Asin,
		"atan":  math.Atan,
		"exp":   math.Exp,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
	}
	for name, f := range one {
		sym := Function(name, 1)
		m[sym] = math1(sym, f)
	}
	return m
}

func constant(v float64) SymbolEvaluator {
	return func(args []any) (any, error) {
		return v, nil
	}
}

func math1(sym Symbol, f func(float64) float64) SymbolEvaluator {
	return func(args []any) (any, error) {
		x, ok := numberValue(args[0])
		if !ok {
			return nil, &TypeMismatchError{Symbol: sym, Args: args}
		}
		return f(x), nil
	}
}

func math2(sym Symbol, f func(x, y float64) float64) SymbolEvaluator {
	return func(args []any) (any, error) {
		x, xok := numberValue(args[0])
		y, yok := numberValue(args[1])
		if !xok || !yok {
			return nil, &TypeMismatchError{Symbol: sym, Args: args}
		}
		return f(x, y), nil
	}
}

// fold reduces any number of numeric arguments pairwise. With no arguments
// the call is an arity mismatch rather than an identity.
func fold(sym Symbol, f func(x, y float64) float64) SymbolEvaluator {
	return func(args []any) (any, error) {
		if len(args) == 0 {
			return nil, &ArityMismatchError{Symbol: sym}
		}
		acc, ok := numberValue(args[0])
		if !ok {
			return nil, &TypeMismatchError{Symbol: sym, Args: args}
		}
		for _, a := range args[1:] {
			x, ok := numberValue(a)
			if !ok {
				return nil, &TypeMismatchError{Symbol: sym, Args: args}
			}
			acc = f(acc, x)
		}
		return acc, nil
	}
}
