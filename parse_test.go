package exprbox

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCanonicalString(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"add", "4+5", "4 + 5"},
		{"precedence", "4+5*2", "4 + 5 * 2"},
		{"group", "(4+5)*2", "(4 + 5) * 2"},
		{"redundant", "(((4)))", "4"},
		{"assoc", "1-2-3", "1 - 2 - 3"},
		{"rightgroup", "1-(2-3)", "1 - (2 - 3)"},
		{"numnorm", "4.0 + 05", "4 + 5"},
		{"prefix", "-x*y", "-x * y"},
		{"prefixgroup", "-(x*y)", "-(x * y)"},
		{"doubleneg", "4+-5", "4 + -5"},
		{"not", "!a && b", "!a && b"},
		{"coalesce", "x??y??z", "x ?? y ?? z"},
		{"coalesceleft", "(x??y)??z", "(x ?? y) ?? z"},
		{"ternary", "a?b:c", "a ? b : c"},
		{"ternarynest", "a?b:c?d:e", "a ? b : c ? d : e"},
		{"ternarygroup", "(a?b:c)?d:e", "(a ? b : c) ? d : e"},
		{"elvis", "a?:b", "a ?: b"},
		{"closedrange", "1 ... 3", "1...3"},
		{"halfopen", "1 ..< 3", "1..<3"},
		{"shortrange", "1 .. 3", "1..3"},
		{"fromrange", "2...", "2..."},
		{"uptorange", "..<3", "..<3"},
		{"throughrange", "...3", "...3"},
		{"rangegroup", "(1+2)...3", "1 + 2...3"},
		{"subscript", "a[0]", "a[0]"},
		{"subscriptrange", "a[1..<3]", "a[1..<3]"},
		{"chainsub", "a[0][1]", "a[0][1]"},
		{"exprsub", "(a+b)[0]", "(a + b)[0]"},
		{"litsub", "[1, 2][0]", "[1, 2][0]"},
		{"strsub", "'foo'[0]", "'foo'[0]"},
		{"array", "[ 1,2 , 3 ]", "[1, 2, 3]"},
		{"emptyarray", "[]", "[]"},
		{"tuple", "(1 ,2)", "(1, 2)"},
		{"call", "f( x,y )", "f(x, y)"},
		{"call0", "f()", "f()"},
		{"nestedcall", "f(g(1), [2])", "f(g(1), [2])"},
		{"string", `"hi" + 'there'`, `"hi" + 'there'`},
		{"custominfix", "a -> b", "a -> b"},
		{"customcmp", "a -> b && c", "a -> b && c"},
		{"comparison", "1<2==3>=4", "1 < 2 == 3 >= 4"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := Parse(c.src)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			if got := p.String(); got != c.want {
				t.Errorf("%q printed as %q, want %q", c.src, got, c.want)
			}
			// The canonical form is a fixed point.
			q, err := Parse(c.want)
			if err != nil {
				t.Fatalf("failed to reparse %q: %v", c.want, err)
			}
			if got := q.String(); got != c.want {
				t.Errorf("%q reprinted as %q", c.want, got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		col   int
		token string
	}{
		{"empty", "", 1, ""},
		{"danglingop", "4 +", 4, ""},
		{"unclosedparen", "(1", 3, ""},
		{"unclosedsub", "a[1", 4, ""},
		{"adjacent", "1 2", 3, "2"},
		{"adjacentnames", "a b", 3, "b"},
		{"closeonly", ")", 1, ")"},
		{"trailingcomma", "f(1,)", 5, ")"},
		{"emptygroup", "()", 2, ")"},
		{"emptysub", "a[]", 3, "]"},
		{"ternarynocolon", "x ? y", 6, ""},
		{"barecolon", "1 : 2", 3, ":"},
		{"callafterexpr", "(a)(b)", 4, "("},
		{"mismatched", "(1]", 3, "]"},
		{"unterminated", "'abc", 1, "'abc"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.src)
			if err == nil {
				t.Fatalf("parsing %q gave no error", c.src)
			}
			var uerr *UnexpectedTokenError
			if !errors.As(err, &uerr) {
				t.Fatalf("error was %#v, not UnexpectedTokenError", err)
			}
			if uerr.Col != c.col || uerr.Token != c.token {
				t.Errorf("parsing %q: error at %d on %q, want %d on %q", c.src, uerr.Col, uerr.Token, c.col, c.token)
			}
			if uerr.Pos() != uerr.Col {
				t.Errorf("Pos (%d) disagrees with Col (%d)", uerr.Pos(), uerr.Col)
			}
		})
	}
}

func TestParsedSymbols(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []Symbol
	}{
		{"variables", "x + y", []Symbol{Infix("+"), Variable("x"), Variable("y")}},
		{"call", "f(x, 1)", []Symbol{Function("f", 2), Variable("x")}},
		{"arities", "f() + f(1)", []Symbol{Function("f", 0), Function("f", 1), Infix("+")}},
		{"array", "a[i]", []Symbol{ArraySymbol("a"), Variable("i")}},
		{"dedup", "x * x + x", []Symbol{Infix("*"), Infix("+"), Variable("x")}},
		{"prefix", "-x", []Symbol{Prefix("-"), Variable("x")}},
		{"postfix", "x...", []Symbol{Postfix("..."), Variable("x")}},
		{"numbers", "1 + 2", []Symbol{Infix("+")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := Parse(c.src)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			set := make(map[Symbol]bool, len(c.want))
			for _, s := range c.want {
				set[s] = true
			}
			if diff := cmp.Diff(sortSymbols(set), p.Symbols()); diff != "" {
				t.Errorf("wrong symbols for %q (-want +got):\n%s", c.src, diff)
			}
		})
	}
}

func TestSubscriptBecomesArraySymbol(t *testing.T) {
	p, err := Parse("a[0] + (a)[0] + 'a'[0]")
	if err != nil {
		t.Fatal(err)
	}
	var haveArray, haveInfix bool
	for _, s := range p.Symbols() {
		switch s {
		case ArraySymbol("a"):
			haveArray = true
		case Infix("[]"):
			haveInfix = true
		}
	}
	if !haveArray {
		t.Error("bare subscripted name did not become an array symbol")
	}
	if !haveInfix {
		t.Error("parenthesized and literal subscripts did not become the subscript operator")
	}
}
