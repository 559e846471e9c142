package exprbox_test

import (
	"math"
	"testing"

	"github.com/exprbox/exprbox"
)

func FuzzEvaluate(f *testing.F) {
	f.Add("1 / 0")
	f.Add("nil ?? 'x' + 4")
	f.Add("[1, [2, 'a']] == [1, [2, 'a']]")
	f.Add("'héllo'[1...3]")
	f.Fuzz(func(t *testing.T, s string) {
		e, err := exprbox.New(s, exprbox.Symbols(exprbox.MathSymbols()), exprbox.PureSymbols())
		if err != nil {
			return
		}
		// Evaluation may fail, but never panic, and must leave the
		// expression reusable.
		v1, err1 := e.Evaluate()
		v2, err2 := e.Evaluate()
		if (err1 == nil) != (err2 == nil) {
			t.Errorf("evaluating %q twice: %v, %v then %v, %v", s, v1, err1, v2, err2)
		}
	})
}

func FuzzValueBox(f *testing.F) {
	f.Add(0.0, "")
	f.Add(math.NaN(), "pad")
	f.Add(math.Float64frombits(0xFFF8000000000003), "x")
	f.Fuzz(func(t *testing.T, x float64, pad string) {
		var b exprbox.ValueBox
		b.Store(pad)
		b.Store(pad)
		got, ok := b.Load(b.Store(x)).(float64)
		if !ok {
			t.Fatalf("%#x decoded to a non-float", math.Float64bits(x))
		}
		if math.Float64bits(got) != math.Float64bits(x) {
			t.Errorf("%#x round-tripped to %#x", math.Float64bits(x), math.Float64bits(got))
		}
	})
}
