package exprbox_test

import (
	"fmt"

	"github.com/exprbox/exprbox"
)

func ExampleNew() {
	e, _ := exprbox.New("price * (1 + vat)", exprbox.Constants(map[string]any{
		"price": 250.0,
		"vat":   0.2,
	}))
	v, _ := e.Evaluate()
	fmt.Println(e, "=", v)
	// Output:
	// price * (1 + vat) = 300
}

func ExampleSymbols() {
	greet := func(args []any) (any, error) {
		return fmt.Sprintf("hello, %v!", args[0]), nil
	}
	e, _ := exprbox.New("greet('world')", exprbox.Symbols(map[exprbox.Symbol]exprbox.SymbolEvaluator{
		exprbox.Function("greet", 1): greet,
	}))
	v, _ := e.Evaluate()
	fmt.Println(v)
	// Output:
	// hello, world!
}

func ExampleEvaluateAs() {
	e, _ := exprbox.New("[1, 2, 3][1...]")
	ns, _ := exprbox.EvaluateAs[[]int](e)
	fmt.Println(ns)
	// Output:
	// [2 3]
}
