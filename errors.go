package exprbox

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// UnexpectedTokenError is the only error class surfaced while parsing. It
// reports a token, or end of input, in a position where it is not allowed.
type UnexpectedTokenError struct {
	// Col is the rune position of the offending token, counted from 1.
	Col int
	// Token is the offending token text. It is empty at end of input.
	Token string
}

func (err *UnexpectedTokenError) Error() string {
	if err.Token == "" {
		return errpos(err.Col, "unexpected end of expression")
	}
	return errpos(err.Col, "unexpected token "+strconv.Quote(err.Token))
}

// Pos returns the rune position of the offending token.
func (err *UnexpectedTokenError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// UndefinedSymbolError indicates that no evaluator could be resolved for a
// referenced name, operator, or arity.
type UndefinedSymbolError struct {
	Symbol Symbol
}

func (err *UndefinedSymbolError) Error() string {
	return "undefined " + err.Symbol.String()
}

// ArityMismatchError indicates a call of a registered name at an arity it is
// not registered for. Symbol carries the arity that is registered.
type ArityMismatchError struct {
	// Symbol is the registered symbol, including its registered arity.
	Symbol Symbol
}

func (err *ArityMismatchError) Error() string {
	return "wrong number of arguments for " + err.Symbol.String()
}

// TypeMismatchError indicates an operator or subscript applied to operands of
// incompatible shapes.
type TypeMismatchError struct {
	Symbol Symbol
	// Args are the decoded operand values.
	Args []any
	// Incomparable is set when both operands share a type but the type does
	// not support structural equality.
	Incomparable bool
}

func (err *TypeMismatchError) Error() string {
	if err.Incomparable && len(err.Args) > 0 {
		return fmt.Sprintf("values of type %T do not support structural equality", err.Args[0])
	}
	var b strings.Builder
	b.WriteString("cannot apply ")
	b.WriteString(err.Symbol.String())
	b.WriteString(" to (")
	for i, a := range err.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatValue(a))
	}
	b.WriteString(")")
	return b.String()
}

// ArrayBoundsError indicates an array index or range bound outside the
// container. Index is the exact offending bound.
type ArrayBoundsError struct {
	Symbol Symbol
	Index  int
}

func (err *ArrayBoundsError) Error() string {
	return "index " + strconv.Itoa(err.Index) + " out of bounds for " + err.Symbol.String()
}

// StringBoundsError indicates a character offset or string position outside
// the string. Index is either an int offset or a StringIndex.
type StringBoundsError struct {
	String string
	Index  any
}

func (err *StringBoundsError) Error() string {
	return "index " + formatValue(err.Index) + " out of bounds for string " + strconv.Quote(err.String)
}

// InvalidRangeError indicates a range construction whose bounds are out of
// order: lower > upper for a closed range, lower >= upper for a half-open
// range.
type InvalidRangeError struct {
	Lower, Upper any
}

func (err *InvalidRangeError) Error() string {
	return "invalid range " + formatValue(err.Lower) + " to " + formatValue(err.Upper)
}

// IllegalSubscriptError indicates subscripting a value that is not an array,
// dictionary, or string.
type IllegalSubscriptError struct {
	Symbol Symbol
	Value  any
}

func (err *IllegalSubscriptError) Error() string {
	return "cannot subscript " + formatValue(err.Value) + " via " + err.Symbol.String()
}

// ResultTypeMismatchError indicates that the final value of an evaluation
// cannot be projected to the type the caller requested.
type ResultTypeMismatchError struct {
	Type  reflect.Type
	Value any
}

func (err *ResultTypeMismatchError) Error() string {
	return "cannot convert result " + formatValue(err.Value) + " to type " + err.Type.String()
}

// MessageError carries a custom failure message from a caller-supplied symbol
// evaluator. Evaluators may also return any other error; it propagates
// unchanged.
type MessageError struct {
	Text string
}

func (err *MessageError) Error() string {
	return err.Text
}

// Errorf creates a MessageError with a formatted message.
func Errorf(format string, args ...any) error {
	return &MessageError{Text: fmt.Sprintf(format, args...)}
}
