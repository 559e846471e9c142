package exprbox

import (
	"math"
	"strconv"
)

// Expr     = Operand { binop Expr | postop | '[' Expr ']' | '?' Expr ':' Expr }
// Operand  = num | str | name | name '(' List ')' | preop Operand
//          | '(' List ')' | '[' List ']'
// List     = [ Expr { ',' Expr } ]
//
// Operators are recognized by shape, not by name: any operator token is
// accepted in infix, prefix, or postfix position, and whether it means
// anything is decided at evaluation time.

// ParseOption configures Parse. Operators is the only one; it also
// satisfies the Build Option interface so New accepts it in either role.
type ParseOption interface {
	parseOption(*parsecfg)
}

type parsecfg struct {
	ops []string
}

// Parse parses an expression into an immutable tree. The only parse-time
// error class is *UnexpectedTokenError.
//
// Operator tokens are recognized by shape: any single operator rune, any
// built-in multi-rune form, and any name registered through Operators.
// Unregistered multi-rune runs split greedily into known forms.
func Parse(src string, opts ...ParseOption) (*ParsedExpression, error) {
	var cfg parsecfg
	for _, o := range opts {
		o.parseOption(&cfg)
	}
	l := newLexer(src, cfg.ops)
	n, err := parseExpr(l, exprPrec)
	if err != nil {
		return nil, err
	}
	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenEOF {
		return nil, unexpected(tok)
	}
	return &ParsedExpression{root: n}, nil
}

func unexpected(tok lexToken) error {
	if tok.kind == tokenEOF {
		return &UnexpectedTokenError{Col: tok.col}
	}
	return &UnexpectedTokenError{Col: tok.col, Token: tok.text}
}

// parseExpr parses a subexpression, consuming operators more binding than
// until. The token ending the subexpression is pushed back.
func parseExpr(l *lexer, until operator) (*node, error) {
	n, err := parseOperand(l)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenEOF, tokenClose, tokenComma:
			l.push(tok)
			return n, nil
		case tokenOp:
			if tok.text == ":" {
				// Only a ternary consumes a colon; leave it to the caller.
				l.push(tok)
				return n, nil
			}
			if tok.text == "?" {
				if !ternaryPrec.moreBinding(until) {
					l.push(tok)
					return n, nil
				}
				n, err = parseTernary(l, n)
				if err != nil {
					return nil, err
				}
				continue
			}
			prec := binop(tok.text)
			if !prec.moreBinding(until) {
				l.push(tok)
				return n, nil
			}
			nxt, err := l.peek()
			if err != nil {
				return nil, err
			}
			if !startsTerm(nxt) {
				n = &node{sym: Postfix(tok.text), args: []*node{n}}
				continue
			}
			rhs, err := parseExpr(l, prec)
			if err != nil {
				return nil, err
			}
			n = &node{sym: Infix(tok.text), args: []*node{n, rhs}}
		case tokenOpen:
			switch tok.text {
			case "[":
				// Subscripts bind more tightly than any operator.
				idx, err := parseIndex(l)
				if err != nil {
					return nil, err
				}
				if n.sym.Kind == SymbolVariable && len(n.args) == 0 && !isQuoted(n.sym.Name) {
					n = &node{sym: ArraySymbol(n.sym.Name), args: []*node{idx}}
				} else {
					n = &node{sym: Infix("[]"), args: []*node{n, idx}}
				}
			case "(":
				// A call is legal only directly after a bare name; the name
				// node was produced by parseOperand in the same position.
				return nil, unexpected(tok)
			}
		default:
			// Two adjacent operands, as in "1 2".
			return nil, unexpected(tok)
		}
	}
}

// parseTernary parses "? mid : rhs" after cond has been parsed.
func parseTernary(l *lexer, cond *node) (*node, error) {
	mid, err := parseExpr(l, exprPrec)
	if err != nil {
		return nil, err
	}
	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenOp || tok.text != ":" {
		return nil, unexpected(tok)
	}
	rhs, err := parseExpr(l, ternaryPrec)
	if err != nil {
		return nil, err
	}
	return &node{sym: Infix("?:"), args: []*node{cond, mid, rhs}}, nil
}

// parseOperand parses the first component of a term: a literal, a name, a
// call, a prefix operator, a parenthesized group or tuple, or an array
// literal.
func parseOperand(l *lexer) (*node, error) {
	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, &UnexpectedTokenError{Col: tok.col, Token: tok.text}
		}
		return &node{num: f}, nil
	case tokenStr:
		// String literals are variable symbols under their quoted spelling;
		// the builder recognizes the quotes and inlines the string constant.
		return &node{sym: Variable(tok.text)}, nil
	case tokenIdent:
		open, err := l.peek()
		if err != nil {
			return nil, err
		}
		if open.kind == tokenOpen && open.text == "(" {
			l.must()
			args, err := parseList(l, ")", true)
			if err != nil {
				return nil, err
			}
			return &node{sym: Function(tok.text, len(args)), args: args}, nil
		}
		return &node{sym: Variable(tok.text)}, nil
	case tokenOp:
		if tok.text == ":" || tok.text == "?" {
			return nil, unexpected(tok)
		}
		arg, err := parseExpr(l, prefixPrec)
		if err != nil {
			return nil, err
		}
		return &node{sym: Prefix(tok.text), args: []*node{arg}}, nil
	case tokenOpen:
		if tok.text == "[" {
			args, err := parseList(l, "]", true)
			if err != nil {
				return nil, err
			}
			return &node{sym: Function("[]", len(args)), args: args}, nil
		}
		args, err := parseList(l, ")", false)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return args[0], nil
		}
		return &node{sym: Infix(","), args: args}, nil
	default:
		return nil, unexpected(tok)
	}
}

// parseIndex parses a subscript body up to ']'. A comma-separated index
// becomes a tuple; built-in containers reject tuple indices at evaluation.
func parseIndex(l *lexer) (*node, error) {
	args, err := parseList(l, "]", false)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return &node{sym: Infix(","), args: args}, nil
}

// parseList parses zero or more comma-separated expressions ending with the
// given close bracket, consuming it.
func parseList(l *lexer, close string, allowEmpty bool) ([]*node, error) {
	tok, err := l.peek()
	if err != nil {
		return nil, err
	}
	if allowEmpty && tok.kind == tokenClose && tok.text == close {
		l.must()
		return nil, nil
	}
	var args []*node
	for {
		n, err := parseExpr(l, exprPrec)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.kind == tokenComma:
			continue
		case tok.kind == tokenClose && tok.text == close:
			return args, nil
		default:
			return nil, unexpected(tok)
		}
	}
}

// must consumes the pushed token. Panics if there is none.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("exprbox: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// startsTerm reports whether tok can begin an operand. An operator that
// cannot is in postfix position.
func startsTerm(tok lexToken) bool {
	switch tok.kind {
	case tokenNum, tokenStr, tokenIdent, tokenOpen:
		return true
	case tokenOp:
		return tok.text != ":" && tok.text != "?"
	default:
		return false
	}
}

func isQuoted(name string) bool {
	return name != "" && (name[0] == '\'' || name[0] == '"')
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets the binding of an infix operator. Operators without a fixed
// entry parse at comparison precedence, left-associative.
func binop(text string) operator {
	switch text {
	case "*", "/", "%", "<<", ">>":
		return operator{10, false}
	case "+", "-":
		return operator{9, false}
	case "...", "..<", "..":
		return operator{8, false}
	case "??":
		return operator{7, true}
	case "==", "!=", "<", "<=", ">", ">=":
		return operator{6, false}
	case "&&":
		return operator{5, false}
	case "||":
		return operator{4, false}
	case "?:":
		return ternaryPrec
	default:
		return operator{6, false}
	}
}

var (
	// prefixPrec is the binding of prefix and postfix operators.
	prefixPrec = operator{11, true}
	// ternaryPrec is the binding of ?: and of the elvis form a ?: b.
	ternaryPrec = operator{3, true}
	// exprPrec is the binding required to parse an entire subexpression.
	exprPrec = operator{math.MinInt8, true}
)

// subscriptPrec is the precedence of subscript and call forms when printing.
const subscriptPrec = int8(100)
