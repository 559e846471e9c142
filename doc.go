// Package exprbox implements an embeddable expression parsing and evaluation
// engine.
//
// A formula is parsed once into an immutable syntax tree and then evaluated
// any number of times against live data supplied through named constants and
// symbol tables. Expressions may mix arithmetic, boolean logic, strings,
// arrays, dictionaries, ranges, and opaque host values; results project back
// to the static type the caller asks for.
//
// Evaluation exchanges only float64 values between tree nodes. Non-numeric
// values travel through the same channel as tagged quiet-NaN bit patterns
// referencing a per-expression value table, so purely numeric expressions
// evaluate without allocation.
package exprbox
