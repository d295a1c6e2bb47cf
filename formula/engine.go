package formula

import "strings"

// Engine is the public evaluator (§6 External Interfaces). Construct one
// with New and reuse it across calls to Parse — the registry and
// callbacks it holds are read-only after construction, but per-parse
// state (the lexer/parser's token stream, the test-mode miss log) is not
// safe to share across concurrent Parse calls on the same Engine
// (§5 "concurrent parses on the same instance are undefined behavior").
type Engine struct {
	cfg          Config
	undefinedLog []string
}

// New builds an Engine from cfg. A nil map in cfg is treated as empty.
func New(cfg Config) *Engine {
	if cfg.Functions == nil {
		cfg.Functions = map[string]Function{}
	}
	if cfg.ContextFunctions == nil {
		cfg.ContextFunctions = map[string]ContextFunction{}
	}
	return &Engine{cfg: cfg}
}

// evalHost adapts the Engine's Config callbacks to the host interface the
// parser and operator algebra dispatch through.
type evalHost struct {
	eng *Engine
}

func (h evalHost) onCell(ref CellRef) (Value, *FormulaError) {
	if h.eng.cfg.OnCell == nil {
		return Empty(), nil
	}
	return h.eng.cfg.OnCell(ref)
}

func (h evalHost) onRange(ref RangeRef) ([][]Value, *FormulaError) {
	if h.eng.cfg.OnRange == nil {
		return [][]Value{{Empty()}}, nil
	}
	return h.eng.cfg.OnRange(ref)
}

func (h evalHost) onVariable(name string) (*Reference, *FormulaError) {
	if h.eng.cfg.OnVariable == nil {
		return nil, nil
	}
	return h.eng.cfg.OnVariable(name)
}

func (h evalHost) callFunction(e *Engine, name string, args []CallArg) (Value, *FormulaError) {
	return e.invokeFunction(h, name, args)
}

// Parse evaluates a formula string to a Value. Formula-level failures
// (division by zero, type mismatches, undefined names, syntax errors)
// are returned as a Value of Kind KindError wrapped so the caller can
// still inspect the FormulaError through Value.Err. An error returned by
// a host callback during evaluation comes back the same way, as an
// error-kind Value. Parse itself only returns a non-nil error for caller
// misuse (empty input), matching §6 ("never throws for formula-level
// errors").
func (e *Engine) Parse(text string, pos *Position, allowReturnArray bool) (Value, *FormulaError) {
	if strings.TrimSpace(text) == "" {
		err := NewError(ErrValue)
		return Value{}, &err
	}
	src := strings.TrimPrefix(text, "=")

	lx := NewLexer(src)
	tokens, lexErr := lx.Tokenize()
	if lexErr != nil {
		return Err(*lexErr), nil
	}

	h := evalHost{eng: e}
	p := newParser(src, tokens, e, h)
	v, parseErr := p.parseFormula()
	if parseErr != nil {
		return Err(*parseErr), nil
	}
	if p.peek().Type != TokEOF {
		t := p.peek()
		lc := ComputeLineCol(src, t.Pos)
		msg := FormatSyntaxError(src, lc, "unexpected trailing input '"+t.Value+"'")
		return Err(NewErrorf(ErrGeneric, "%s", msg)), nil
	}

	result, checkErr := checkFormulaResult(h, v, allowReturnArray)
	if checkErr != nil {
		return Err(*checkErr), nil
	}
	return result, nil
}

// Cell reads a single cell's value through the configured OnCell
// callback. Context functions (SUMIF, AVERAGEIF, and friends) use this to
// read cells beyond the ones the parser already resolved for them,
// since they receive raw references rather than dereferenced values.
func (e *Engine) Cell(ref CellRef) (Value, *FormulaError) {
	if e.cfg.OnCell == nil {
		return Empty(), nil
	}
	return e.cfg.OnCell(ref)
}

// Range reads every cell of ref as a 2-D array through OnRange.
func (e *Engine) Range(ref RangeRef) ([][]Value, *FormulaError) {
	if e.cfg.OnRange == nil {
		return [][]Value{{Empty()}}, nil
	}
	return e.cfg.OnRange(ref)
}

// ParseResult bundles ParseAsync's eventual outcome — the future §6
// describes ParseAsync as returning, with its fields exported so a
// caller outside this package can actually read the value it drained
// off the channel.
type ParseResult struct {
	Value Value
	Err   *FormulaError
}

// ParseAsync runs Parse on a goroutine and returns a channel carrying the
// single result. Per §5, async mode only ever interleaves argument/result
// suspension points within a single evaluation — there is no parallelism
// requirement, so this is a convenience wrapper rather than a distinct
// evaluation strategy.
func (e *Engine) ParseAsync(text string, pos *Position, allowReturnArray bool) <-chan ParseResult {
	ch := make(chan ParseResult, 1)
	go func() {
		v, err := e.Parse(text, pos, allowReturnArray)
		ch <- ParseResult{Value: v, Err: err}
	}()
	return ch
}
