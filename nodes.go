package exprbox

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. A node is
// either a numeric literal or a symbol applied to zero or more children.
// Nodes are immutable after parsing.
type node struct {
	sym  Symbol
	num  float64
	args []*node
}

func (n *node) isNumber() bool {
	return n.sym.Kind == symbolNone
}

// ParsedExpression is an immutable parse tree. It may be built into any
// number of Expression instances and re-printed in a canonical form.
type ParsedExpression struct {
	root *node
}

// String creates the canonical text of the parsed expression: normalized
// spacing, normalized numeric literals, and parentheses only where
// precedence requires them. The canonical form always reflects the tree as
// parsed, never any later optimization.
func (p *ParsedExpression) String() string {
	var b strings.Builder
	p.root.fmt(&b, math.MinInt8)
	return b.String()
}

// Symbols returns every symbol occurring in the parse tree, sorted,
// including symbols that optimization may later fold away.
func (p *ParsedExpression) Symbols() []Symbol {
	set := make(map[Symbol]bool)
	p.root.symbols(set)
	return sortSymbols(set)
}

func (n *node) symbols(set map[Symbol]bool) {
	if !n.isNumber() {
		set[n.sym] = true
	}
	for _, a := range n.args {
		a.symbols(set)
	}
}

func sortSymbols(set map[Symbol]bool) []Symbol {
	syms := make([]Symbol, 0, len(set))
	for s := range set {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].String() < syms[j].String() })
	return syms
}

// formatNumber renders a numeric literal or value in its shortest exact
// form, so 4.0 prints as "4".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// fmt writes the canonical form of n. parent is the lowest precedence the
// surrounding context accepts without parentheses.
func (n *node) fmt(b *strings.Builder, parent int8) {
	switch n.sym.Kind {
	case symbolNone:
		b.WriteString(formatNumber(n.num))
	case SymbolVariable:
		b.WriteString(n.sym.Name)
	case SymbolArray:
		b.WriteString(n.sym.Name)
		b.WriteByte('[')
		n.args[0].fmt(b, math.MinInt8)
		b.WriteByte(']')
	case SymbolPrefix:
		n.group(b, parent, prefixPrec.prec, func() {
			b.WriteString(n.sym.Name)
			n.args[0].fmt(b, prefixPrec.prec)
		})
	case SymbolPostfix:
		n.group(b, parent, prefixPrec.prec, func() {
			n.args[0].fmt(b, prefixPrec.prec)
			b.WriteString(n.sym.Name)
		})
	case SymbolInfix:
		switch n.sym.Name {
		case "[]":
			n.args[0].fmt(b, subscriptPrec)
			b.WriteByte('[')
			n.args[1].fmt(b, math.MinInt8)
			b.WriteByte(']')
		case ",":
			b.WriteByte('(')
			n.fmtList(b)
			b.WriteByte(')')
		case "?:":
			if len(n.args) == 3 {
				n.group(b, parent, ternaryPrec.prec, func() {
					n.args[0].fmt(b, ternaryPrec.prec+1)
					b.WriteString(" ? ")
					n.args[1].fmt(b, ternaryPrec.prec)
					b.WriteString(" : ")
					n.args[2].fmt(b, ternaryPrec.prec)
				})
				break
			}
			n.fmtInfix(b, parent)
		default:
			n.fmtInfix(b, parent)
		}
	case SymbolFunction:
		if n.sym.Name == "[]" {
			b.WriteByte('[')
			n.fmtList(b)
			b.WriteByte(']')
			break
		}
		b.WriteString(n.sym.Name)
		b.WriteByte('(')
		n.fmtList(b)
		b.WriteByte(')')
	default:
		panic("exprbox: invalid node " + n.sym.String())
	}
}

func (n *node) fmtInfix(b *strings.Builder, parent int8) {
	op := binop(n.sym.Name)
	lp, rp := op.prec, op.prec+1
	if op.right {
		lp, rp = rp, lp
	}
	n.group(b, parent, op.prec, func() {
		n.args[0].fmt(b, lp)
		if isRangeOp(n.sym.Name) {
			b.WriteString(n.sym.Name)
		} else {
			b.WriteByte(' ')
			b.WriteString(n.sym.Name)
			b.WriteByte(' ')
		}
		n.args[1].fmt(b, rp)
	})
}

func (n *node) fmtList(b *strings.Builder) {
	for i, a := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.fmt(b, math.MinInt8)
	}
}

// group wraps body in parentheses when prec is too weak for the context.
func (n *node) group(b *strings.Builder, parent, prec int8, body func()) {
	if prec < parent {
		b.WriteByte('(')
		body()
		b.WriteByte(')')
		return
	}
	body()
}

func isRangeOp(op string) bool {
	switch op {
	case "...", "..<", "..":
		return true
	default:
		return false
	}
}
