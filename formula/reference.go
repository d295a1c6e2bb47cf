package formula

// MaxRow and MaxColumn bound the addressable sheet grid, matching
// Excel's own worksheet limits. Whole-row and whole-column references
// take these bounds when they are constructed (NewWholeRowRef,
// NewWholeColumnRef).
const (
	MaxRow    = 1048576
	MaxColumn = 16384
)

// CellRef identifies a single cell. Row and Col are 1-based; Sheet is
// empty when the reference did not carry an explicit sheet prefix (the
// host decides what "current sheet" means).
type CellRef struct {
	Sheet string
	Row   int
	Col   int
}

// RangeRef identifies a rectangular block of cells. FromRow/FromCol/ToRow/
// ToCol are always normalized (From <= To) and always bounded to a real
// 1..MaxRow / 1..MaxColumn span — whole-row and whole-column references
// are expanded eagerly at construction time rather than carried lazily.
// RowsSpanAll / ColsSpanAll record *why* an axis reached its extreme
// bounds: true means the reference was written as a bare row or column
// (e.g. "5:5" or "A:A"), which matters for the range and intersection
// operators' combination rules (§4.2, §4.3) even though the numeric
// bounds alone no longer distinguish "wrote the whole axis" from
// "happened to span the whole axis".
type RangeRef struct {
	Sheet       string
	FromRow     int
	FromCol     int
	ToRow       int
	ToCol       int
	RowsSpanAll bool
	ColsSpanAll bool
}

// NewCellRef builds a fully specified single-cell reference.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// NewRangeRef builds a normalized range from two corner cells.
func NewRangeRef(sheet string, r1, c1, r2, c2 int) RangeRef {
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return RangeRef{Sheet: sheet, FromRow: r1, FromCol: c1, ToRow: r2, ToCol: c2}
}

// NewWholeRowRef builds a reference to an entire row.
func NewWholeRowRef(sheet string, row int) RangeRef {
	return RangeRef{Sheet: sheet, FromRow: row, ToRow: row, FromCol: 1, ToCol: MaxColumn, ColsSpanAll: true}
}

// NewWholeColumnRef builds a reference to an entire column.
func NewWholeColumnRef(sheet string, col int) RangeRef {
	return RangeRef{Sheet: sheet, FromCol: col, ToCol: col, FromRow: 1, ToRow: MaxRow, RowsSpanAll: true}
}

// IsSingleCell reports whether the range has collapsed to exactly one cell.
func (r RangeRef) IsSingleCell() bool {
	return !r.RowsSpanAll && !r.ColsSpanAll && r.FromRow == r.ToRow && r.FromCol == r.ToCol
}

// ToCellRef converts a single-cell range to a CellRef. Only valid when
// IsSingleCell is true.
func (r RangeRef) ToCellRef() CellRef {
	return CellRef{Sheet: r.Sheet, Row: r.FromRow, Col: r.FromCol}
}

// Reference is the tagged union of the two reference shapes a Value can
// carry (§3: "Either a CellRef ... or RangeRef").
type Reference struct {
	IsRange bool
	Cell    CellRef
	Range   RangeRef
}

func RefCell(c CellRef) Reference   { return Reference{IsRange: false, Cell: c} }
func RefRange(r RangeRef) Reference { return Reference{IsRange: true, Range: r} }

// AsRange returns the reference widened to a RangeRef, so range-shaped
// code (union boxes, the range operator, dependency recording) can treat
// single cells and ranges uniformly.
func (ref Reference) AsRange() RangeRef {
	if ref.IsRange {
		return ref.Range
	}
	c := ref.Cell
	return RangeRef{Sheet: c.Sheet, FromRow: c.Row, ToRow: c.Row, FromCol: c.Col, ToCol: c.Col}
}

// Sheet returns the reference's sheet name, whichever shape it carries.
func (ref Reference) Sheet() string {
	if ref.IsRange {
		return ref.Range.Sheet
	}
	return ref.Cell.Sheet
}

// Collection is an ordered union of reference results, produced by the
// comma-inside-parens union operator (§3, §4.2). A Collection is only
// ever built with two or more items — a single-element union collapses
// to its sole element before reaching this type.
type Collection struct {
	Items []UnionItem
}

// UnionItem pairs a union member's evaluated value with the reference it
// came from (or a zero Reference if the member was never a reference).
type UnionItem struct {
	Value Value
	Ref   Reference
	HasRef bool
}

// combineRanges computes the smallest RangeRef covering every box in
// boxes — the range (":") operator's "smallest RangeRef covering all
// operands" rule (§4.2). Sheet is taken from the first box that names
// one.
func combineRanges(boxes []RangeRef) RangeRef {
	out := boxes[0]
	for _, b := range boxes[1:] {
		if out.Sheet == "" {
			out.Sheet = b.Sheet
		}
		out.RowsSpanAll = out.RowsSpanAll || b.RowsSpanAll
		out.ColsSpanAll = out.ColsSpanAll || b.ColsSpanAll
		if !out.RowsSpanAll {
			out.FromRow = min(out.FromRow, b.FromRow)
			out.ToRow = max(out.ToRow, b.ToRow)
		}
		if !out.ColsSpanAll {
			out.FromCol = min(out.FromCol, b.FromCol)
			out.ToCol = max(out.ToCol, b.ToCol)
		}
	}
	if out.RowsSpanAll {
		out.FromRow, out.ToRow = 1, MaxRow
	}
	if out.ColsSpanAll {
		out.FromCol, out.ToCol = 1, MaxColumn
	}
	return out
}

// intersectBoxes implements the shrink-intersection algorithm of §4.3:
// start with the first box, then repeatedly narrow by the overlap with
// each subsequent box. A disjoint overlap or a sheet mismatch yields
// #NULL!; an intersection that never acquires a bound on some axis (both
// sides whole-row, or both sides whole-column, the whole way through)
// yields #VALUE!, since the result could never collapse to a concrete
// cell or rectangle.
func intersectBoxes(boxes []RangeRef) (RangeRef, *FormulaError) {
	out := boxes[0]
	for _, b := range boxes[1:] {
		if out.Sheet != "" && b.Sheet != "" && out.Sheet != b.Sheet {
			err := NewError(ErrNull)
			return RangeRef{}, &err
		}
		if out.Sheet == "" {
			out.Sheet = b.Sheet
		}

		rowsSpanAll := out.RowsSpanAll && b.RowsSpanAll
		colsSpanAll := out.ColsSpanAll && b.ColsSpanAll

		fromRow, toRow := out.FromRow, out.ToRow
		if !out.RowsSpanAll || !b.RowsSpanAll {
			fromRow = max(boxRowFrom(out), boxRowFrom(b))
			toRow = min(boxRowTo(out), boxRowTo(b))
			if fromRow > toRow {
				err := NewError(ErrNull)
				return RangeRef{}, &err
			}
		}

		fromCol, toCol := out.FromCol, out.ToCol
		if !out.ColsSpanAll || !b.ColsSpanAll {
			fromCol = max(boxColFrom(out), boxColFrom(b))
			toCol = min(boxColTo(out), boxColTo(b))
			if fromCol > toCol {
				err := NewError(ErrNull)
				return RangeRef{}, &err
			}
		}

		out = RangeRef{
			Sheet:       out.Sheet,
			FromRow:     fromRow,
			ToRow:       toRow,
			FromCol:     fromCol,
			ToCol:       toCol,
			RowsSpanAll: rowsSpanAll,
			ColsSpanAll: colsSpanAll,
		}
	}
	if out.RowsSpanAll || out.ColsSpanAll {
		err := NewError(ErrValue)
		return RangeRef{}, &err
	}
	return out, nil
}

func boxRowFrom(r RangeRef) int {
	if r.RowsSpanAll {
		return 1
	}
	return r.FromRow
}

func boxRowTo(r RangeRef) int {
	if r.RowsSpanAll {
		return MaxRow
	}
	return r.ToRow
}

func boxColFrom(r RangeRef) int {
	if r.ColsSpanAll {
		return 1
	}
	return r.FromCol
}

func boxColTo(r RangeRef) int {
	if r.ColsSpanAll {
		return MaxColumn
	}
	return r.ToCol
}
