package exprbox

import (
	"errors"
	"math"
	"testing"
)

func mathExpr(t *testing.T, src string) *Expression {
	t.Helper()
	e, err := New(src, Symbols(MathSymbols()), PureSymbols())
	if err != nil {
		t.Fatalf("%q failed to build: %v", src, err)
	}
	return e
}

func TestMathSymbols(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"sqrt", "sqrt(16)", 4},
		{"cbrt", "cbrt(27)", 3},
		{"floor", "floor(1.9)", 1},
		{"ceil", "ceil(1.1)", 2},
		{"round", "round(2.5)", 3},
		{"abs", "abs(0 - 3)", 3},
		{"exp", "exp(0)", 1},
		{"log", "log(e)", 1},
		{"log10", "log10(1000)", 3},
		{"pow", "pow(2, 10)", 1024},
		{"atan2", "atan2(0, 1)", 0},
		{"mod", "mod(7, 4)", 3},
		{"min", "min(3, 1, 2)", 1},
		{"max", "max(3, 1, 2)", 3},
		{"minone", "min(5)", 5},
		{"pi", "cos(pi)", -1},
		{"nested", "sqrt(pow(3, 2) + pow(4, 2))", 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := mathExpr(t, c.src)
			v, err := e.Evaluate()
			if err != nil {
				t.Fatalf("evaluation error: %v", err)
			}
			f, ok := v.(float64)
			if !ok || math.Abs(f-c.want) > 1e-12 {
				t.Errorf("%q = %v, want %v", c.src, v, c.want)
			}
			// Literal arguments leave nothing to resolve at evaluation time.
			if syms := e.Symbols(); len(syms) != 0 {
				t.Errorf("%q still depends on %v", c.src, syms)
			}
		})
	}
}

func TestMathSymbolErrors(t *testing.T) {
	t.Run("badargument", func(t *testing.T) {
		e := mathExpr(t, "sqrt('a')")
		_, err := e.Evaluate()
		var terr *TypeMismatchError
		if !errors.As(err, &terr) {
			t.Fatalf("error was %#v, not TypeMismatchError", err)
		}
	})
	t.Run("wrongarity", func(t *testing.T) {
		e := mathExpr(t, "sqrt(1, 2)")
		_, err := e.Evaluate()
		var aerr *ArityMismatchError
		if !errors.As(err, &aerr) {
			t.Fatalf("error was %#v, not ArityMismatchError", err)
		}
		if aerr.Symbol != Function("sqrt", 1) {
			t.Errorf("reported registration was %v", aerr.Symbol)
		}
	})
	t.Run("emptyfold", func(t *testing.T) {
		e := mathExpr(t, "min()")
		_, err := e.Evaluate()
		var aerr *ArityMismatchError
		if !errors.As(err, &aerr) {
			t.Fatalf("error was %#v, not ArityMismatchError", err)
		}
	})
}
