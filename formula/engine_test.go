package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSum is a minimal SUM: flattens every argument (arrays, numbers,
// text that coerces) and adds them up. Registered under the null-as-zero
// default policy.
func testSum(args []CallArg) (Value, *FormulaError) {
	total := 0.0
	err := flattenParams(args, true, func(v Value, _ FlattenInfo) *FormulaError {
		if v.Kind == KindEmpty {
			return nil
		}
		n, nerr := v.ToNumber()
		if nerr != nil {
			return nerr
		}
		total += n
		return nil
	}, 0)
	if err != nil {
		return Value{}, err
	}
	return Num(total), nil
}

// testIf is a minimal context-function IF, exercising the no-data-retrieve
// path: it receives raw references in args and must dereference them
// itself through the engine's host-backed callback plumbing.
func testIf(e *Engine, args []CallArg) (Value, *FormulaError) {
	h := evalHost{eng: e}
	if len(args) < 2 {
		err := NewErrorf(ErrNA, "IF requires at least 2 arguments")
		return Value{}, &err
	}
	condVal, _, err := extractRefValue(h, args[0].Value)
	if err != nil {
		return Value{}, err
	}
	cond, berr := condVal.ToBool()
	if berr != nil {
		return Value{}, berr
	}
	if cond {
		v, _, err := extractRefValue(h, args[1].Value)
		return v, err
	}
	if len(args) >= 3 {
		v, _, err := extractRefValue(h, args[2].Value)
		return v, err
	}
	return Bool_(false), nil
}

func testIsBlank(args []CallArg) (Value, *FormulaError) {
	if len(args) == 0 {
		return Bool_(true), nil
	}
	return Bool_(args[0].Value.Kind == KindEmpty), nil
}

func buildEngine(cells map[string]Value) *Engine {
	return New(Config{
		Functions: map[string]Function{
			"SUM":     testSum,
			"ISBLANK": testIsBlank,
		},
		ContextFunctions: map[string]ContextFunction{
			"IF": testIf,
		},
		OnCell: func(ref CellRef) (Value, *FormulaError) {
			if v, ok := cells[FormatCellAddress(ref.Row, ref.Col)]; ok {
				return v, nil
			}
			return Empty(), nil
		},
		OnRange: func(ref RangeRef) ([][]Value, *FormulaError) {
			rows := make([][]Value, 0, ref.ToRow-ref.FromRow+1)
			for r := ref.FromRow; r <= ref.ToRow; r++ {
				var row []Value
				for c := ref.FromCol; c <= ref.ToCol; c++ {
					if v, ok := cells[FormatCellAddress(r, c)]; ok {
						row = append(row, v)
					} else {
						row = append(row, Empty())
					}
				}
				rows = append(rows, row)
			}
			return rows, nil
		},
	})
}

func TestParseDivisionByZero(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse("=1/0", nil, false)
	require.Nil(t, err)
	require.True(t, v.IsError())
	assert.Equal(t, ErrDiv0, v.Err.Kind)
}

func TestParseConcatenationWithBoolean(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse(`="abc"&TRUE`, nil, false)
	require.Nil(t, err)
	assert.Equal(t, "abcTRUE", v.Text)
}

func TestParseSumCoercesStrings(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse(`=SUM(1,2,3,"4")`, nil, false)
	require.Nil(t, err)
	assert.Equal(t, 10.0, v.Number)
}

func TestParseSumOverRange(t *testing.T) {
	e := buildEngine(map[string]Value{
		"A1": Num(1), "A2": Num(2), "B1": Num(3), "B2": Num(4),
	})
	v, err := e.Parse("=SUM(A1:B2)", nil, false)
	require.Nil(t, err)
	assert.Equal(t, 10.0, v.Number)
}

func TestParseBareSingleColumnRangeDereferencesTopCell(t *testing.T) {
	e := buildEngine(map[string]Value{
		"A1": Num(1), "A2": Num(2),
	})
	v, err := e.Parse("=A1:A2", nil, false)
	require.Nil(t, err)
	assert.Equal(t, 1.0, v.Number)
}

func TestParseBareMultiColumnRangeIsValueError(t *testing.T) {
	e := buildEngine(map[string]Value{
		"A1": Num(1), "A2": Num(2), "B1": Num(3), "B2": Num(4),
	})
	v, err := e.Parse("=A1:B2", nil, false)
	require.Nil(t, err)
	assert.True(t, v.IsError())
	assert.Equal(t, ErrValue, v.Err.Kind)
}

func TestParseAsyncDeliversValueAndErrThroughExportedFields(t *testing.T) {
	e := buildEngine(nil)
	result := <-e.ParseAsync("=1+2", nil, false)
	require.Nil(t, result.Err)
	assert.Equal(t, 3.0, result.Value.Number)
}

func TestParseOperatorPrecedence(t *testing.T) {
	e := buildEngine(nil)

	v, err := e.Parse("=2+3*4", nil, false)
	require.Nil(t, err)
	assert.Equal(t, 14.0, v.Number)

	v, err = e.Parse("=-2^2", nil, false)
	require.Nil(t, err)
	assert.Equal(t, 4.0, v.Number)

	v, err = e.Parse("=1&2+3", nil, false)
	require.Nil(t, err)
	assert.Equal(t, "15", v.Text)
}

func TestParseIntersection(t *testing.T) {
	e := buildEngine(map[string]Value{
		"A1": Num(1), "A2": Num(2), "B1": Num(3), "B2": Num(4),
	})
	v, err := e.Parse("=SUM(A1:B2 A1:A2)", nil, false)
	require.Nil(t, err)
	assert.Equal(t, 3.0, v.Number)
}

func TestParseUnionCollection(t *testing.T) {
	e := buildEngine(map[string]Value{"A1": Num(1), "B1": Num(2)})
	v, err := e.Parse("=SUM((A1,B1))", nil, false)
	require.Nil(t, err)
	assert.Equal(t, 3.0, v.Number)
}

func TestParseSheetQualifiedReference(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse("=Sheet2!A1", nil, false)
	require.Nil(t, err)
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestParseIfFunction(t *testing.T) {
	e := buildEngine(map[string]Value{"A1": Num(5)})
	v, err := e.Parse(`=IF(A1>0,"pos","neg")`, nil, false)
	require.Nil(t, err)
	assert.Equal(t, "pos", v.Text)
}

func TestParseSyntaxErrorHasCaret(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse("=1+", nil, false)
	require.Nil(t, err)
	require.True(t, v.IsError())
	assert.Equal(t, ErrGeneric, v.Err.Kind)
	assert.Contains(t, v.Err.Details, "^")
}

func TestParseArrayLiteral(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse("={1,2;3,4}", nil, true)
	require.Nil(t, err)
	require.Equal(t, KindArray, v.Kind)
	assert.Equal(t, 1.0, v.Array[0][0].Number)
	assert.Equal(t, 2.0, v.Array[0][1].Number)
	assert.Equal(t, 3.0, v.Array[1][0].Number)
	assert.Equal(t, 4.0, v.Array[1][1].Number)
}

func TestParseCrossTypeComparison(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse(`=1="1"`, nil, false)
	require.Nil(t, err)
	assert.False(t, v.Bool)

	v, err = e.Parse(`=1<>"1"`, nil, false)
	require.Nil(t, err)
	assert.True(t, v.Bool)
}

func TestParseErrorShortCircuit(t *testing.T) {
	e := buildEngine(nil)
	v, err := e.Parse("=(1/0)+1", nil, false)
	require.Nil(t, err)
	require.True(t, v.IsError())
	assert.Equal(t, ErrDiv0, v.Err.Kind)
}

func TestDependencyEngineDiscoversRefsInOrder(t *testing.T) {
	d := NewDependencyEngine(nil)
	refs, err := d.Parse("=SUM(A1:A2,B1)+C1", false)
	require.Nil(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, 1, refs[0].AsRange().FromRow)
	assert.Equal(t, 2, refs[0].AsRange().ToRow)
}

func TestDependencyEngineDedupesCellWithinRange(t *testing.T) {
	d := NewDependencyEngine(nil)
	refs, err := d.Parse("=SUM(A1:A10)+A5", false)
	require.Nil(t, err)
	assert.Len(t, refs, 1)
}
