package exprbox

import "strconv"

// SymbolKind discriminates the callable positions an expression can contain.
type SymbolKind int8

const (
	symbolNone SymbolKind = iota

	// SymbolVariable is a bare name, e.g. x.
	SymbolVariable
	// SymbolArray is a name that is subsequently subscripted, e.g. x[0].
	SymbolArray
	// SymbolInfix is a binary (or, for tuples and ternaries, n-ary) operator.
	SymbolInfix
	// SymbolPrefix is a unary operator written before its operand.
	SymbolPrefix
	// SymbolPostfix is a unary operator written after its operand.
	SymbolPostfix
	// SymbolFunction is a call with a fixed or open argument count.
	SymbolFunction
)

// AnyArity marks a function symbol callable with any number of arguments.
const AnyArity = -1

// Symbol identifies a dispatch slot in an expression: a variable, a
// subscripted array name, an operator, or an arity-tagged function. Symbols
// are immutable values with structural equality and may be used as map keys.
type Symbol struct {
	Kind SymbolKind
	Name string
	// Arity is the argument count for SymbolFunction, or AnyArity. It is
	// zero for every other kind.
	Arity int
}

// Variable returns the symbol for a bare name.
func Variable(name string) Symbol {
	return Symbol{Kind: SymbolVariable, Name: name}
}

// ArraySymbol returns the symbol for a subscripted name.
func ArraySymbol(name string) Symbol {
	return Symbol{Kind: SymbolArray, Name: name}
}

// Infix returns the symbol for a binary operator.
func Infix(op string) Symbol {
	return Symbol{Kind: SymbolInfix, Name: op}
}

// Prefix returns the symbol for a leading unary operator.
func Prefix(op string) Symbol {
	return Symbol{Kind: SymbolPrefix, Name: op}
}

// Postfix returns the symbol for a trailing unary operator.
func Postfix(op string) Symbol {
	return Symbol{Kind: SymbolPostfix, Name: op}
}

// Function returns the symbol for a function of the given arity. Pass
// AnyArity for a function callable with any number of arguments.
func Function(name string, arity int) Symbol {
	return Symbol{Kind: SymbolFunction, Name: name, Arity: arity}
}

func (s Symbol) String() string {
	switch s.Kind {
	case SymbolVariable:
		return "variable " + strconv.Quote(s.Name)
	case SymbolArray:
		return "array " + strconv.Quote(s.Name+"[]")
	case SymbolInfix:
		return "infix operator " + strconv.Quote(s.Name)
	case SymbolPrefix:
		return "prefix operator " + strconv.Quote(s.Name)
	case SymbolPostfix:
		return "postfix operator " + strconv.Quote(s.Name)
	case SymbolFunction:
		if s.Arity == AnyArity {
			return "function " + strconv.Quote(s.Name+"()")
		}
		return "function " + strconv.Quote(s.Name+"()") + " of " + strconv.Itoa(s.Arity) + " arguments"
	default:
		return "invalid symbol " + strconv.Quote(s.Name)
	}
}
