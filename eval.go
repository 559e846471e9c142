package exprbox

import "sync"

// An Expression is a parsed, resolved, and optimized expression ready to
// evaluate. An Expression is safe for concurrent use; evaluations are
// serialized internally.
type Expression struct {
	parsed *ParsedExpression
	root   *enode
	box    *ValueBox
	// baseline is the table length after build; entries above it are
	// per-evaluation temporaries.
	baseline int
	mu       sync.Mutex
	syms     []Symbol
}

// Evaluate computes the expression's value. Values produced during the call
// are released before it returns, whether or not it succeeds.
func (e *Expression) Evaluate() (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.box.truncate(e.baseline)
	v, err := e.root.run(e.box)
	if err != nil {
		return nil, err
	}
	return e.box.Load(v), nil
}

// Symbols reports every symbol the built expression still depends on, in a
// stable order. Symbols eliminated by constant folding do not appear.
func (e *Expression) Symbols() []Symbol {
	out := make([]Symbol, len(e.syms))
	copy(out, e.syms)
	return out
}

// String formats the expression in canonical form. Folding does not change
// the rendering; it matches the parse.
func (e *Expression) String() string {
	return e.parsed.String()
}

func (n *enode) run(b *ValueBox) (float64, error) {
	if n.isLit {
		return n.lit, nil
	}
	if n.err != nil {
		return 0, n.err
	}
	for i, a := range n.args {
		v, err := a.run(b)
		if err != nil {
			return 0, err
		}
		n.scratch[i] = v
	}
	return n.eval(b, n.scratch)
}
