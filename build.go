package exprbox

import "math"

// SymbolEvaluator computes the value of a symbol from its decoded argument
// values. Returning an error aborts the evaluation; the error reaches the
// caller of Evaluate unchanged.
type SymbolEvaluator func(args []any) (any, error)

// ChannelEvaluator computes the value of a symbol directly on channel
// values, using the box to decode arguments and encode the result. It is the
// advanced, allocation-conscious form of SymbolEvaluator. Implementations
// must not retain args past the call.
type ChannelEvaluator func(b *ValueBox, args []float64) (float64, error)

// Option configures Build.
type Option interface {
	buildOption(*buildcfg)
}

type (
	constsOpt    map[string]any
	symbolsOpt   map[Symbol]SymbolEvaluator
	flagOpt      int8
	resolversOpt struct {
		impure, pure func(Symbol) ChannelEvaluator
	}
)

const (
	flagNoBool flagOpt = iota
	flagPure
	flagNoOpt
)

type buildcfg struct {
	constants map[string]any
	symbols   map[Symbol]SymbolEvaluator
	boolSyms  bool
	pureSyms  bool
	noOpt     bool
	impure    func(Symbol) ChannelEvaluator
	pure      func(Symbol) ChannelEvaluator
}

// Constants binds names to fixed values. A constant shadows any symbol-table
// entry of the same name, for both the variable and the array spelling, and
// is always eligible for folding.
func Constants(m map[string]any) Option {
	return constsOpt(m)
}

func (o constsOpt) buildOption(c *buildcfg) {
	if c.constants == nil {
		c.constants = make(map[string]any, len(o))
	}
	for k, v := range o {
		c.constants[k] = v
	}
}

// Symbols binds symbols to caller evaluators. Entries are impure unless
// PureSymbols is also given: they run exactly once per evaluation and are
// never folded.
func Symbols(m map[Symbol]SymbolEvaluator) Option {
	return symbolsOpt(m)
}

func (o symbolsOpt) buildOption(c *buildcfg) {
	if c.symbols == nil {
		c.symbols = make(map[Symbol]SymbolEvaluator, len(o))
	}
	for k, v := range o {
		c.symbols[k] = v
	}
}

// NoBoolSymbols drops the default registration of true, false, and the
// boolean comparison and logical operators.
func NoBoolSymbols() Option {
	return flagNoBool
}

// PureSymbols treats every Symbols entry as pure: results for literal
// arguments may be computed once at build time and folded into the tree.
func PureSymbols() Option {
	return flagPure
}

// NoOptimize disables constant folding entirely; every node re-invokes its
// evaluator on every evaluation call. Parsing and results are unaffected.
func NoOptimize() Option {
	return flagNoOpt
}

func (o flagOpt) buildOption(c *buildcfg) {
	switch o {
	case flagNoBool:
		c.boolSyms = false
	case flagPure:
		c.pureSyms = true
	case flagNoOpt:
		c.noOpt = true
	}
}

// Resolvers supplies symbol lookups at the channel level, consulted before
// any Symbols table: impure first, then, only while optimizing, pure. Either
// may be nil. Built-in operators still resolve after both.
//
// A resolver cannot be enumerated, so multi-rune operator names it serves
// must be named through Operators for the lexer to scan them whole.
func Resolvers(impure, pure func(Symbol) ChannelEvaluator) Option {
	return resolversOpt{impure: impure, pure: pure}
}

func (o resolversOpt) buildOption(c *buildcfg) {
	c.impure = o.impure
	c.pure = o.pure
}

// An OperatorSet extends the multi-rune operator tokens the lexer
// recognizes, so that a caller-defined operator such as ** scans as one
// token instead of splitting into shorter known forms. It may be passed to
// Parse and to Build or New alike. Names that could not be one operator
// token are ignored.
type OperatorSet []string

// Operators names caller-defined multi-rune operators. New also discovers
// operator names automatically from every Symbols table it is given, so
// Operators is only required with Build-after-Parse or with Resolvers.
func Operators(names ...string) OperatorSet {
	return OperatorSet(names)
}

func (o OperatorSet) parseOption(c *parsecfg) {
	for _, name := range o {
		if isOperatorName(name) {
			c.ops = append(c.ops, name)
		}
	}
}

// Operator names act during parsing; a built tree needs nothing further.
func (o OperatorSet) buildOption(c *buildcfg) {}

// operatorNames collects the registered operator spellings a symbol table
// implies the lexer should know.
func operatorNames(m map[Symbol]SymbolEvaluator) OperatorSet {
	var ops OperatorSet
	for sym := range m {
		switch sym.Kind {
		case SymbolInfix, SymbolPrefix, SymbolPostfix:
			if isOperatorName(sym.Name) {
				ops = append(ops, sym.Name)
			}
		}
	}
	return ops
}

// New parses src and builds it in one step. Multi-rune operator names found
// in Symbols tables are registered with the lexer automatically.
func New(src string, opts ...Option) (*Expression, error) {
	var pos []ParseOption
	for _, o := range opts {
		if po, ok := o.(ParseOption); ok {
			pos = append(pos, po)
		}
		if so, ok := o.(symbolsOpt); ok {
			pos = append(pos, operatorNames(so))
		}
	}
	p, err := Parse(src, pos...)
	if err != nil {
		return nil, err
	}
	return Build(p, opts...)
}

// Build resolves and optimizes a parsed expression against the given
// constants and symbol tables. Unresolvable symbols do not fail the build;
// they fail each evaluation with UndefinedSymbolError or
// ArityMismatchError.
func Build(parsed *ParsedExpression, opts ...Option) (*Expression, error) {
	cfg := buildcfg{boolSyms: true}
	for _, o := range opts {
		o.buildOption(&cfg)
	}
	e := &Expression{parsed: parsed, box: &ValueBox{}}
	bld := &builder{cfg: &cfg, box: e.box}
	e.root = bld.compile(parsed.root)
	e.baseline = len(e.box.values)
	set := make(map[Symbol]bool)
	e.root.liveSymbols(set)
	e.syms = sortSymbols(set)
	return e, nil
}

type builder struct {
	cfg *buildcfg
	box *ValueBox
}

// enode is a resolved, possibly folded node of a built expression.
type enode struct {
	sym  Symbol
	eval ChannelEvaluator
	args []*enode
	// scratch is reused across evaluations for argument values; safe
	// because the owning Expression serializes evaluation.
	scratch []float64
	// lit holds the folded channel value when isLit is set.
	lit   float64
	isLit bool
	// err is a build-time pure evaluation failure, re-thrown on every
	// evaluation.
	err error
}

func (n *enode) liveSymbols(set map[Symbol]bool) {
	if n.isLit {
		return
	}
	if n.sym.Kind != symbolNone {
		set[n.sym] = true
	}
	for _, a := range n.args {
		a.liveSymbols(set)
	}
}

func (bld *builder) compile(n *node) *enode {
	if n.isNumber() {
		return &enode{isLit: true, lit: n.num}
	}
	sym := n.sym
	if sym.Kind == SymbolVariable && isQuoted(sym.Name) {
		// A string literal disguised as a variable; inline it as a constant
		// below the baseline.
		return &enode{isLit: true, lit: bld.box.Store(unquote(sym.Name))}
	}
	args := make([]*enode, len(n.args))
	for i, a := range n.args {
		args[i] = bld.compile(a)
	}
	ev, pure := bld.resolve(sym)
	out := &enode{sym: sym, eval: ev, args: args, scratch: make([]float64, len(args))}
	if !pure || bld.cfg.noOpt {
		return out
	}
	if sym == Infix("??") && args[0].isLit {
		// A literal left operand decides ?? at build time even when the
		// right operand cannot fold.
		if math.Float64bits(args[0].lit) == nilBits {
			return args[1]
		}
		return args[0]
	}
	foldable := sym.Kind == SymbolVariable || sym.Kind == SymbolFunction && sym.Arity == 0
	if !foldable {
		foldable = true
		for _, a := range args {
			if !a.isLit {
				foldable = false
				break
			}
		}
	}
	if !foldable {
		return out
	}
	for i, a := range args {
		out.scratch[i] = a.lit
	}
	v, err := ev(bld.box, out.scratch)
	if err != nil {
		// A pure evaluator is invoked at most once: the failure is memoized
		// and re-thrown, never retried.
		return &enode{sym: sym, err: err}
	}
	return &enode{isLit: true, lit: v}
}

// resolve finds the evaluator for a symbol, reporting whether it is pure and
// therefore eligible for folding. Resolution order: caller resolvers (impure
// then pure), constants, the Symbols table, built-in operators, then the
// fallbacks: the variable spelling for an array symbol, and the arity probe
// for functions.
func (bld *builder) resolve(sym Symbol) (ChannelEvaluator, bool) {
	if ev, pure, ok := bld.lookup(sym); ok {
		return ev, pure
	}
	if sym.Kind == SymbolFunction && sym.Arity != AnyArity {
		if ev, pure, ok := bld.lookup(Function(sym.Name, AnyArity)); ok {
			return ev, pure
		}
	}
	if sym.Kind == SymbolArray {
		if ev, pure, ok := bld.lookup(Variable(sym.Name)); ok {
			return bld.wrapSubscript(sym, ev), pure
		}
	}
	if sym.Kind == SymbolFunction {
		if reg, ok := bld.registeredArity(sym); ok {
			err := &ArityMismatchError{Symbol: reg}
			return func(b *ValueBox, args []float64) (float64, error) {
				return 0, err
			}, false
		}
	}
	err := &UndefinedSymbolError{Symbol: sym}
	return func(b *ValueBox, args []float64) (float64, error) {
		return 0, err
	}, false
}

// lookup resolves a symbol without fallbacks.
func (bld *builder) lookup(sym Symbol) (ChannelEvaluator, bool, bool) {
	cfg := bld.cfg
	if cfg.impure != nil {
		if ev := cfg.impure(sym); ev != nil {
			return ev, false, true
		}
	}
	if !cfg.noOpt && cfg.pure != nil {
		if ev := cfg.pure(sym); ev != nil {
			return ev, true, true
		}
	}
	if sym.Kind == SymbolVariable || sym.Kind == SymbolArray {
		if v, ok := cfg.constants[sym.Name]; ok && sym.Kind == SymbolVariable {
			return func(b *ValueBox, args []float64) (float64, error) {
				return b.Store(v), nil
			}, true, true
		}
		if _, ok := cfg.constants[sym.Name]; ok {
			// The array spelling shares the constant through the variable
			// fallback in resolve.
			return nil, false, false
		}
	}
	if ev, ok := cfg.symbols[sym]; ok {
		return wrapEvaluator(ev), cfg.pureSyms, true
	}
	if ev := defaultEvaluator(sym, cfg.boolSyms); ev != nil {
		return ev, true, true
	}
	return nil, false, false
}

// wrapSubscript adapts a container evaluator into the array spelling:
// evaluate the container, then subscript it with the node's single
// argument.
func (bld *builder) wrapSubscript(sym Symbol, container ChannelEvaluator) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		c, err := container(b, nil)
		if err != nil {
			return 0, err
		}
		return subscriptChannel(b, sym, c, args[0])
	}
}

// registeredArity probes arities 0 through 10 for a registration under the
// same name, so a wrong-arity call reports the registered arity rather than
// an undefined symbol.
func (bld *builder) registeredArity(sym Symbol) (Symbol, bool) {
	for k := 0; k <= 10; k++ {
		if k == sym.Arity {
			continue
		}
		probe := Function(sym.Name, k)
		if _, _, ok := bld.lookup(probe); ok {
			return probe, true
		}
	}
	return Symbol{}, false
}

// wrapEvaluator adapts a caller SymbolEvaluator to the channel level.
func wrapEvaluator(f SymbolEvaluator) ChannelEvaluator {
	return func(b *ValueBox, args []float64) (float64, error) {
		vals := make([]any, len(args))
		for i, a := range args {
			vals[i] = b.Load(a)
		}
		v, err := f(vals)
		if err != nil {
			return 0, err
		}
		return b.Store(v), nil
	}
}

// unquote strips the quotes from a string literal token and resolves its
// backslash escapes.
func unquote(q string) string {
	if len(q) < 2 {
		return q
	}
	body := q[1 : len(q)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			out = append(out, c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		default:
			out = append(out, body[i])
		}
	}
	return string(out)
}
