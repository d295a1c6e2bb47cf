package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlformula/formula"
)

func TestSheetBasicArithmeticRecalculates(t *testing.T) {
	s := New()
	v, err := s.SetFormula(CellAddress{Row: 1, Col: 1}, "=1+2")
	require.Nil(t, err)
	assert.Equal(t, 3.0, v.Number)
}

func TestSheetDependentCellsRecalculateOnChange(t *testing.T) {
	s := New()
	_, err := s.SetFormula(CellAddress{Row: 1, Col: 1}, "=10")
	require.Nil(t, err)
	_, err = s.SetFormula(CellAddress{Row: 2, Col: 1}, "=A1*2")
	require.Nil(t, err)

	assert.Equal(t, 20.0, s.Value(CellAddress{Row: 2, Col: 1}).Number)

	_, err = s.SetFormula(CellAddress{Row: 1, Col: 1}, "=50")
	require.Nil(t, err)
	assert.Equal(t, 100.0, s.Value(CellAddress{Row: 2, Col: 1}).Number)
}

func TestSheetSumOverRange(t *testing.T) {
	s := New()
	_, _ = s.SetFormula(CellAddress{Row: 1, Col: 1}, "=1")
	_, _ = s.SetFormula(CellAddress{Row: 2, Col: 1}, "=2")
	_, _ = s.SetFormula(CellAddress{Row: 3, Col: 1}, "=3")
	v, err := s.SetFormula(CellAddress{Row: 4, Col: 1}, "=SUM(A1:A3)")
	require.Nil(t, err)
	assert.Equal(t, 6.0, v.Number)
}

func TestSheetIfFunction(t *testing.T) {
	s := New()
	_, _ = s.SetFormula(CellAddress{Row: 1, Col: 1}, "=5")
	v, err := s.SetFormula(CellAddress{Row: 2, Col: 1}, `=IF(A1>3,"big","small")`)
	require.Nil(t, err)
	assert.Equal(t, "big", v.Text)
}

func TestSheetSumIfCriteria(t *testing.T) {
	s := New()
	_, _ = s.SetFormula(CellAddress{Row: 1, Col: 1}, "=1")
	_, _ = s.SetFormula(CellAddress{Row: 2, Col: 1}, "=2")
	_, _ = s.SetFormula(CellAddress{Row: 3, Col: 1}, "=3")
	v, err := s.SetFormula(CellAddress{Row: 4, Col: 1}, `=SUMIF(A1:A3,">1")`)
	require.Nil(t, err)
	assert.Equal(t, 5.0, v.Number)
}

func TestSheetDivisionByZeroErrorPropagates(t *testing.T) {
	s := New()
	v, err := s.SetFormula(CellAddress{Row: 1, Col: 1}, "=1/0")
	require.Nil(t, err)
	assert.True(t, v.IsError())
	assert.Equal(t, formula.ErrDiv0, v.Err.Kind)
}

func TestRenderFormatsErrorsAndText(t *testing.T) {
	assert.Equal(t, "#DIV/0!", Render(formula.ErrKind(formula.ErrDiv0)))
	assert.Equal(t, "TRUE", Render(formula.Bool_(true)))
}

func TestCellAddressString(t *testing.T) {
	assert.Equal(t, "A1", CellAddress{Row: 1, Col: 1}.String())
	assert.Equal(t, "Sheet2!B3", CellAddress{Sheet: "Sheet2", Row: 3, Col: 2}.String())
}
