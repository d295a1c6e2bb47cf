package formula

import "math"

// host bundles the callbacks an Engine dereferences references and
// variables through. Both the evaluating engine and the dependency-mode
// engine (dependency.go) implement this same shape with different
// semantics, matching §4.6's "alternate host with identical protocol".
type host interface {
	onCell(ref CellRef) (Value, *FormulaError)
	onRange(ref RangeRef) ([][]Value, *FormulaError)
	onVariable(name string) (*Reference, *FormulaError)
	callFunction(e *Engine, name string, args []CallArg) (Value, *FormulaError)
}

// retrieveRef implements §4.4's retrieveRef: a multi-cell RangeRef goes to
// onRange (producing a 2-D array), a CellRef or single-cell RangeRef goes
// to onCell (producing a scalar), a union has each member dereferenced
// the same way, and anything else passes through untouched.
func retrieveRef(h host, v Value) (Value, *FormulaError) {
	if v.Kind == KindUnion {
		resolved, err := resolveUnion(h, v.Union)
		if err != nil {
			return Value{}, err
		}
		return UnionValue(resolved), nil
	}
	if v.Kind != KindRef {
		return v, nil
	}
	ref := v.Ref
	if ref.IsRange && !ref.Range.IsSingleCell() {
		rows, err := h.onRange(ref.Range)
		if err != nil {
			return Value{}, err
		}
		return Arr(rows), nil
	}
	cell := ref.Cell
	if ref.IsRange {
		cell = ref.Range.ToCellRef()
	}
	val, err := h.onCell(cell)
	if err != nil {
		return Value{}, err
	}
	return val, nil
}

// resolveUnion dereferences every member of a Collection built by the
// union operator — the parser stores raw References there since union
// construction itself never touches the host (§4.2).
func resolveUnion(h host, c Collection) (Collection, *FormulaError) {
	out := Collection{Items: make([]UnionItem, len(c.Items))}
	for i, item := range c.Items {
		resolved, err := retrieveRef(h, item.Value)
		if err != nil {
			return Collection{}, err
		}
		out.Items[i] = UnionItem{Value: resolved, Ref: item.Ref, HasRef: item.HasRef}
	}
	return out, nil
}

// extractRefValue resolves an operand for the operator algebra (§4.3):
// returns the dereferenced value and whether it turned out to be an
// array, so operators can apply the "[0][0]" collapsing rule uniformly.
func extractRefValue(h host, v Value) (Value, bool, *FormulaError) {
	resolved, err := retrieveRef(h, v)
	if err != nil {
		return Value{}, false, err
	}
	return resolved, resolved.Kind == KindArray, nil
}

// checkFormulaResult implements §4.4's post-call normalization: NaN/Inf
// results become errors, -0 collapses to 0, and — depending on
// allowReturnArray — array/ref results are either passed through or
// collapsed to a single scalar.
func checkFormulaResult(h host, v Value, allowReturnArray bool) (Value, *FormulaError) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Number) {
			e := NewError(ErrValue)
			return Value{}, &e
		}
		if math.IsInf(v.Number, 0) {
			e := NewError(ErrNum)
			return Value{}, &e
		}
		return Num(normalizeFloat(v.Number)), nil
	case KindError:
		return v, nil
	case KindRef:
		ref := v.Ref
		if !allowReturnArray && ref.IsRange && !ref.Range.IsSingleCell() {
			box := ref.Range
			if box.FromCol != box.ToCol {
				e := NewError(ErrValue)
				return Value{}, &e
			}
			// Columns collapse to one: dereference only the top cell,
			// without materializing the rest of the column through
			// onRange (§4.4's literal branch order).
			val, err := h.onCell(CellRef{Sheet: box.Sheet, Row: box.FromRow, Col: box.FromCol})
			if err != nil {
				return Value{}, err
			}
			return checkFormulaResult(h, val, allowReturnArray)
		}
		resolved, err := retrieveRef(h, v)
		if err != nil {
			return Value{}, err
		}
		return checkFormulaResult(h, resolved, allowReturnArray)
	case KindArray:
		if allowReturnArray {
			return v, nil
		}
		if len(v.Array) == 0 || len(v.Array[0]) == 0 {
			e := NewError(ErrValue)
			return Value{}, &e
		}
		return checkFormulaResult(h, v.Array[0][0], allowReturnArray)
	case KindUnion:
		e := NewError(ErrValue)
		return Value{}, &e
	default:
		return v, nil
	}
}

func normalizeFloat(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}
