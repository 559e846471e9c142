package exprbox

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexToken struct {
	text string
	kind tokenKind
	col  int
}

func (t lexToken) String() string {
	return strconv.Itoa(int(t.kind)) + ":" + t.text + "@" + strconv.Itoa(t.col)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a numeric literal.
	tokenNum
	// tokenStr is a quoted string literal, text including the quotes.
	tokenStr
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is ( or [.
	tokenOpen
	// tokenClose is ) or ].
	tokenClose
	// tokenComma separates arguments and tuple elements.
	tokenComma
)

// opRunes contains the runes which may form operator tokens.
const opRunes = "+-*/%<>=&|^~!?:."

// multiOps lists the built-in multi-rune operators the lexer recognizes,
// longest first. A run of operator runes is split greedily against this
// list, so "4+-5" lexes as "+" then "-" rather than a single "+-" operator.
// Caller operator names merge in ahead of equal-length entries.
var multiOps = []string{
	"..<", "...",
	"==", "!=", "<=", ">=", "&&", "||", "??", "?:", "<<", ">>", "->", "..",
}

// mergeOps merges caller operator names into the built-in list, longest
// first so greedy splitting prefers the longest known form.
func mergeOps(extra []string) []string {
	if len(extra) == 0 {
		return multiOps
	}
	ops := make([]string, 0, len(extra)+len(multiOps))
	ops = append(ops, extra...)
	ops = append(ops, multiOps...)
	sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
	return ops
}

// isOperatorName reports whether a name is a token the lexer could scan as
// one multi-rune operator: two or more runes, all from the operator
// alphabet. Single-rune operators need no registration.
func isOperatorName(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(opRunes, r) {
			return false
		}
	}
	return true
}

type lexer struct {
	src string
	// pos is the byte offset of the next rune.
	pos int
	// col is the rune position of the next rune, counted from 1.
	col int
	p   lexToken
	// multi is the multi-rune operator list, longest first.
	multi []string
}

func newLexer(src string, extra []string) *lexer {
	return &lexer{src: src, col: 1, multi: mergeOps(extra)}
}

// push unreads a token so that it is the next token returned from next.
// Panics if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("exprbox: double push")
	}
	l.p = tok
}

// peek reports the next token without consuming it.
func (l *lexer) peek() (lexToken, error) {
	tok, err := l.next()
	if err != nil {
		return tok, err
	}
	l.push(tok)
	return tok, nil
}

func (l *lexer) rune() (rune, int) {
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) advance(sz int) {
	l.pos += sz
	l.col++
}

// next scans the next token from the input. At the end of input it returns
// an EOF token; it never reads past it. The only error class is
// *UnexpectedTokenError.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	for l.pos < len(l.src) {
		r, sz := l.rune()
		if !unicode.IsSpace(r) {
			break
		}
		l.advance(sz)
	}
	tok := lexToken{col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokenEOF
		return tok, nil
	}
	r, sz := l.rune()
	switch {
	case '0' <= r && r <= '9', r == '.' && l.digitAt(l.pos+sz):
		return l.scanNum()
	case r == '\'' || r == '"':
		return l.scanString(r)
	case r == '_' || unicode.IsLetter(r):
		return l.scanIdent()
	case r == '(' || r == '[':
		l.advance(sz)
		tok.text = string(r)
		tok.kind = tokenOpen
		return tok, nil
	case r == ')' || r == ']':
		l.advance(sz)
		tok.text = string(r)
		tok.kind = tokenClose
		return tok, nil
	case r == ',':
		l.advance(sz)
		tok.text = ","
		tok.kind = tokenComma
		return tok, nil
	case strings.ContainsRune(opRunes, r):
		return l.scanOp()
	default:
		return tok, &UnexpectedTokenError{Col: tok.col, Token: string(r)}
	}
}

// digitAt reports whether the byte at pos is a decimal digit.
func (l *lexer) digitAt(pos int) bool {
	return pos < len(l.src) && '0' <= l.src[pos] && l.src[pos] <= '9'
}

// scanNum scans a numeric literal: digits with an optional fraction and an
// optional signed exponent. A '.' is consumed only when a digit follows, so
// "1...3" lexes as a number, a range operator, and a number.
func (l *lexer) scanNum() (lexToken, error) {
	tok := lexToken{col: l.col, kind: tokenNum}
	start := l.pos
	var dot, exp bool
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case '0' <= c && c <= '9':
			l.advance(1)
		case c == '.' && !dot && !exp && l.digitAt(l.pos+1):
			dot = true
			l.advance(1)
		case (c == 'e' || c == 'E') && !exp && l.pos > start:
			// An exponent marker counts only when a digit follows, after an
			// optional sign; otherwise the marker begins an identifier.
			k := l.pos + 1
			if k < len(l.src) && (l.src[k] == '+' || l.src[k] == '-') {
				k++
			}
			if !l.digitAt(k) {
				goto done
			}
			exp = true
			for l.pos < k {
				l.advance(1)
			}
		default:
			goto done
		}
	}
done:
	tok.text = l.src[start:l.pos]
	if _, err := strconv.ParseFloat(tok.text, 64); err != nil {
		return tok, &UnexpectedTokenError{Col: tok.col, Token: tok.text}
	}
	return tok, nil
}

// scanString scans a quoted string literal delimited by quote, honoring
// backslash escapes. The token text retains the quotes.
func (l *lexer) scanString(quote rune) (lexToken, error) {
	tok := lexToken{col: l.col, kind: tokenStr}
	start := l.pos
	l.advance(1) // opening quote is always one byte
	for l.pos < len(l.src) {
		r, sz := l.rune()
		l.advance(sz)
		switch r {
		case '\\':
			if l.pos < len(l.src) {
				_, sz := l.rune()
				l.advance(sz)
			}
		case quote:
			tok.text = l.src[start:l.pos]
			return tok, nil
		}
	}
	return tok, &UnexpectedTokenError{Col: tok.col, Token: l.src[start:]}
}

// scanIdent scans a name. A '.' continues the name only when a letter or
// underscore follows, so "a.b" is one name but "a...b" is not.
func (l *lexer) scanIdent() (lexToken, error) {
	tok := lexToken{col: l.col, kind: tokenIdent}
	start := l.pos
	for l.pos < len(l.src) {
		r, sz := l.rune()
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.advance(sz)
		case r == '.':
			n, _ := utf8.DecodeRuneInString(l.src[l.pos+sz:])
			if n != '_' && !unicode.IsLetter(n) {
				tok.text = l.src[start:l.pos]
				return tok, nil
			}
			l.advance(sz)
		default:
			tok.text = l.src[start:l.pos]
			return tok, nil
		}
	}
	tok.text = l.src[start:]
	return tok, nil
}

// scanOp scans one operator from a run of operator runes, preferring the
// longest known multi-rune operator and falling back to a single rune.
func (l *lexer) scanOp() (lexToken, error) {
	tok := lexToken{col: l.col, kind: tokenOp}
	rest := l.src[l.pos:]
	for _, op := range l.multi {
		if strings.HasPrefix(rest, op) {
			tok.text = op
			l.pos += len(op)
			l.col += len(op) // multi-rune operators are all ASCII
			return tok, nil
		}
	}
	r, sz := l.rune()
	tok.text = string(r)
	l.advance(sz)
	return tok, nil
}
