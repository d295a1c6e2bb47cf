// Package host wires the formula package's evaluation and
// dependency-discovery protocols together into a small in-memory
// spreadsheet, the way a real host application would: a cell store, a
// recalculation loop driven by the engine's dependency-discovery mode,
// and a function registry. It exists to drive the demo binaries in
// cmd/ and is explicitly outside the formula package's scope, since
// recalculation strategy is a host concern (formula evaluation's
// declared Non-goals).
package host

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"xlformula/formula"
)

var cellAddressPattern = regexp.MustCompile(`^(?:([A-Za-z0-9_]+)!)?([A-Za-z]{1,3})([1-9][0-9]*)$`)

// ParseCellAddress parses an "A1" or "Sheet1!B2" style address into a
// CellAddress, the wire format the demo binaries accept from clients.
func ParseCellAddress(s string) (CellAddress, bool) {
	m := cellAddressPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return CellAddress{}, false
	}
	col, err := formula.ColumnToNumber(m[2])
	if err != nil {
		return CellAddress{}, false
	}
	row, convErr := strconv.Atoi(m[3])
	if convErr != nil {
		return CellAddress{}, false
	}
	return CellAddress{Sheet: m[1], Row: row, Col: col}, true
}

// CellAddress identifies one cell on one sheet, the unit the recalc
// graph and the cell store both key off of.
type CellAddress struct {
	Sheet string
	Row   int
	Col   int
}

func (a CellAddress) String() string {
	prefix := ""
	if a.Sheet != "" {
		prefix = a.Sheet + "!"
	}
	return prefix + formula.FormatCellAddress(a.Row, a.Col)
}

// Sheet is a single in-memory worksheet: formula text, last-computed
// values, named references, and the dependency edges between cells
// needed to recalculate in the right order after an edit.
type Sheet struct {
	mu sync.RWMutex

	formulas map[CellAddress]string
	values   map[CellAddress]formula.Value
	names    map[string]formula.Reference

	// precedents[addr] is every cell addr's formula reads from.
	// dependents[addr] is every cell that reads from addr — the reverse
	// edge set, walked to find what needs recalculating after addr
	// changes. Every SetFormula replaces the edited cell's own edges
	// wholesale (rewireEdges) instead of diffing them, which is simpler
	// than the teacher's incremental DependencyGraph edits and entirely
	// adequate for a demo-scale sheet.
	precedents map[CellAddress][]CellAddress
	dependents map[CellAddress][]CellAddress

	engine *formula.Engine
}

// New builds an empty sheet wired to the built-in function registry.
func New() *Sheet {
	s := &Sheet{
		formulas:   map[CellAddress]string{},
		values:     map[CellAddress]formula.Value{},
		names:      map[string]formula.Reference{},
		precedents: map[CellAddress][]CellAddress{},
		dependents: map[CellAddress][]CellAddress{},
	}

	cfg := formula.Config{
		OnCell:     s.onCell,
		OnRange:    s.onRange,
		OnVariable: s.onVariable,
		TestMode:   true,
	}
	NewBuiltIns().Install(&cfg)
	s.engine = formula.New(cfg)
	return s
}

func (s *Sheet) onCell(ref formula.CellRef) (formula.Value, *formula.FormulaError) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[CellAddress{Sheet: ref.Sheet, Row: ref.Row, Col: ref.Col}]
	if !ok {
		return formula.Empty(), nil
	}
	return v, nil
}

func (s *Sheet) onRange(ref formula.RangeRef) ([][]formula.Value, *formula.FormulaError) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([][]formula.Value, ref.ToRow-ref.FromRow+1)
	for r := range rows {
		row := make([]formula.Value, ref.ToCol-ref.FromCol+1)
		for c := range row {
			addr := CellAddress{Sheet: ref.Sheet, Row: ref.FromRow + r, Col: ref.FromCol + c}
			if v, ok := s.values[addr]; ok {
				row[c] = v
			} else {
				row[c] = formula.Empty()
			}
		}
		rows[r] = row
	}
	return rows, nil
}

func (s *Sheet) onVariable(name string) (*formula.Reference, *formula.FormulaError) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.names[strings.ToUpper(name)]
	if !ok {
		return nil, nil
	}
	return &ref, nil
}

// DefineName registers a named reference (e.g. "Total" -> Sheet1!A1:A10).
func (s *Sheet) DefineName(name string, ref formula.Reference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[strings.ToUpper(name)] = ref
}

// Update pairs a recalculated cell with its new value, the unit
// SetFormulaAll reports back so a host can broadcast exactly what
// changed rather than the whole sheet.
type Update struct {
	Address CellAddress
	Value   formula.Value
}

// SetFormula stores text as addr's formula and recalculates addr and its
// dependents, returning addr's own resulting value.
func (s *Sheet) SetFormula(addr CellAddress, text string) (formula.Value, error) {
	updates, err := s.SetFormulaAll(addr, text)
	if err != nil {
		return formula.Value{}, err
	}
	for _, u := range updates {
		if u.Address == addr {
			return u.Value, nil
		}
	}
	return formula.Empty(), nil
}

// SetFormulaAll stores text as addr's formula, rewires addr's dependency
// edges by running the engine in dependency-discovery mode over text,
// and recalculates addr plus every cell that transitively depends on it,
// returning every recalculated cell in recalculation order.
func (s *Sheet) SetFormulaAll(addr CellAddress, text string) ([]Update, error) {
	refs, derr := formula.NewDependencyEngine(func(name string) (*formula.Reference, *formula.FormulaError) {
		return s.onVariable(name)
	}).Parse(text, true)
	if derr != nil {
		return nil, derr
	}

	s.mu.Lock()
	s.formulas[addr] = text
	s.rewireEdges(addr, refs)
	order := s.topoOrderFrom(addr)
	s.mu.Unlock()

	updates := make([]Update, 0, len(order))
	for _, cur := range order {
		v := s.evalCell(cur)
		s.mu.Lock()
		s.values[cur] = v
		s.mu.Unlock()
		updates = append(updates, Update{Address: cur, Value: v})
	}
	return updates, nil
}

// evalCell parses the stored formula for addr fresh, the way every
// incremental spreadsheet recalculation does: recalculation isn't
// memoized AST re-walking, it's re-parsing with the latest dependency
// values already in the cell store.
func (s *Sheet) evalCell(addr CellAddress) formula.Value {
	s.mu.RLock()
	text, ok := s.formulas[addr]
	s.mu.RUnlock()
	if !ok {
		return formula.Empty()
	}
	v, err := s.engine.Parse(text, nil, false)
	if err != nil {
		return formula.Err(formula.NewErrorf(formula.ErrGeneric, "%s", err.Error()))
	}
	return v
}

// rewireEdges replaces addr's precedent set with the cells/ranges refs
// names, flattening RangeRefs to their constituent cells — fine at the
// demo scale this package targets, though a production host would keep
// range edges intact the way the teacher's RangePrecedents does.
func (s *Sheet) rewireEdges(addr CellAddress, refs []formula.Reference) {
	for _, old := range s.precedents[addr] {
		s.dependents[old] = removeAddr(s.dependents[old], addr)
	}
	delete(s.precedents, addr)

	var precedents []CellAddress
	for _, ref := range refs {
		box := ref.AsRange()
		for r := box.FromRow; r <= box.ToRow; r++ {
			for c := box.FromCol; c <= box.ToCol; c++ {
				p := CellAddress{Sheet: box.Sheet, Row: r, Col: c}
				precedents = append(precedents, p)
				s.dependents[p] = append(s.dependents[p], addr)
			}
		}
	}
	s.precedents[addr] = precedents
}

func removeAddr(list []CellAddress, target CellAddress) []CellAddress {
	out := list[:0]
	for _, a := range list {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}

// topoOrderFrom returns addr followed by every transitive dependent of
// addr, in an order where no cell precedes one of its own precedents —
// a Kahn's-algorithm pass over the subgraph reachable from addr, simpler
// than a whole-sheet topological sort since only addr's descendants can
// possibly have gone stale.
func (s *Sheet) topoOrderFrom(addr CellAddress) []CellAddress {
	reachable := map[CellAddress]bool{addr: true}
	queue := []CellAddress{addr}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range s.dependents[cur] {
			if !reachable[dep] {
				reachable[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	indegree := map[CellAddress]int{}
	for addr := range reachable {
		for _, p := range s.precedents[addr] {
			if reachable[p] {
				indegree[addr]++
			}
		}
	}

	var ready []CellAddress
	for addr := range reachable {
		if indegree[addr] == 0 {
			ready = append(ready, addr)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].String() < ready[j].String() })

	var order []CellAddress
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, dep := range s.dependents[cur] {
			if !reachable[dep] {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	return order
}

// Value returns addr's last-computed value.
func (s *Sheet) Value(addr CellAddress) formula.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[addr]; ok {
		return v
	}
	return formula.Empty()
}

// Render formats v the way a cell display would: errors as their "#...!"
// code, an array as its top-left element, everything else via ToText.
func Render(v formula.Value) string {
	if v.IsError() {
		return v.Err.Code()
	}
	if v.Kind == formula.KindArray {
		if len(v.Array) == 0 || len(v.Array[0]) == 0 {
			return ""
		}
		return Render(v.Array[0][0])
	}
	t, err := v.ToText()
	if err != nil {
		return fmt.Sprintf("#ERR(%s)", err.Code())
	}
	return t
}
