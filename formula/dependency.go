package formula

import (
	"strconv"
	"strings"
)

// DependencyEngine reuses the same parser recursion as Engine but with
// the alternate host semantics of §4.6: it records every cell/range
// reference a formula touches instead of computing values, and answers
// every onCell/onRange/callFunction with an inert stub so the recursion
// completes without a real data source.
type DependencyEngine struct {
	OnVariable func(name string) (*Reference, *FormulaError)
	refs       []Reference
	seen       map[string]bool
}

// NewDependencyEngine builds a dependency-discovery engine. onVariable
// may be nil, in which case every Name reference resolves to #NAME?.
func NewDependencyEngine(onVariable func(name string) (*Reference, *FormulaError)) *DependencyEngine {
	return &DependencyEngine{OnVariable: onVariable, seen: map[string]bool{}}
}

// Parse runs text through the shared parser and returns the list of
// deduplicated references discovered, in first-seen (discovery) order.
// ignoreError suppresses a syntax error so dependency discovery can
// proceed best-effort against a malformed formula; when false, a syntax
// error still yields whatever references were recorded before it hit.
func (d *DependencyEngine) Parse(text string, ignoreError bool) ([]Reference, *FormulaError) {
	d.refs = nil
	d.seen = map[string]bool{}

	src := strings.TrimPrefix(text, "=")
	lx := NewLexer(src)
	tokens, lexErr := lx.Tokenize()
	if lexErr != nil {
		if ignoreError {
			return d.refs, nil
		}
		return d.refs, lexErr
	}

	eng := New(Config{})
	p := newParser(src, tokens, eng, d)
	_, parseErr := p.parseFormula()
	if parseErr != nil && !ignoreError {
		return d.refs, parseErr
	}
	return d.refs, nil
}

func (d *DependencyEngine) onCell(ref CellRef) (Value, *FormulaError) {
	d.record(RefCell(ref))
	return Num(0), nil
}

func (d *DependencyEngine) onRange(ref RangeRef) ([][]Value, *FormulaError) {
	d.record(RefRange(ref))
	return [][]Value{{Num(0)}}, nil
}

func (d *DependencyEngine) onVariable(name string) (*Reference, *FormulaError) {
	if d.OnVariable == nil {
		return nil, nil
	}
	ref, err := d.OnVariable(name)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		d.record(*ref)
	}
	return ref, nil
}

// callFunction ignores name, dereferencing every argument (so references
// nested in function calls are still discovered) and always returns the
// §4.6 stub {value:0, ref:{}}.
func (d *DependencyEngine) callFunction(e *Engine, name string, args []CallArg) (Value, *FormulaError) {
	for _, a := range args {
		if a.Omitted {
			continue
		}
		if _, _, err := extractRefValue(d, a.Value); err != nil {
			return Value{}, err
		}
	}
	return Num(0), nil
}

// record de-duplicates ref against what's already been seen: an exact
// repeat is skipped, and a cell that falls inside an already-recorded
// range is skipped too (§4.6 "cell-within-existing-range and exact-range
// duplicates are skipped").
func (d *DependencyEngine) record(ref Reference) {
	key := refKey(ref)
	if d.seen[key] {
		return
	}
	box := ref.AsRange()
	for _, existing := range d.refs {
		eb := existing.AsRange()
		if eb.Sheet == box.Sheet && rangeContains(eb, box) {
			d.seen[key] = true
			return
		}
	}
	d.seen[key] = true
	d.refs = append(d.refs, ref)
}

func rangeContains(outer, inner RangeRef) bool {
	fromRow, toRow := boxRowFrom(inner), boxRowTo(inner)
	fromCol, toCol := boxColFrom(inner), boxColTo(inner)
	oFromRow, oToRow := boxRowFrom(outer), boxRowTo(outer)
	oFromCol, oToCol := boxColFrom(outer), boxColTo(outer)
	return oFromRow <= fromRow && oToRow >= toRow && oFromCol <= fromCol && oToCol >= toCol
}

func refKey(ref Reference) string {
	b := ref.AsRange()
	return b.Sheet + "|" + strconv.Itoa(b.FromRow) + "," + strconv.Itoa(b.FromCol) +
		"-" + strconv.Itoa(b.ToRow) + "," + strconv.Itoa(b.ToCol)
}
