package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineRangesSmallestCoveringBox(t *testing.T) {
	a := NewRangeRef("", 2, 2, 4, 4)
	b := NewRangeRef("", 1, 5, 1, 5)
	combined := combineRanges([]RangeRef{a, b})
	assert.Equal(t, 1, combined.FromRow)
	assert.Equal(t, 4, combined.ToRow)
	assert.Equal(t, 2, combined.FromCol)
	assert.Equal(t, 5, combined.ToCol)
}

func TestCombineWholeRowAndWholeColumnYieldsFullSheet(t *testing.T) {
	row := NewWholeRowRef("", 5)
	col := NewWholeColumnRef("", 3)
	combined := combineRanges([]RangeRef{row, col})
	assert.True(t, combined.RowsSpanAll)
	assert.True(t, combined.ColsSpanAll)
	assert.Equal(t, 1, combined.FromRow)
	assert.Equal(t, MaxRow, combined.ToRow)
	assert.Equal(t, 1, combined.FromCol)
	assert.Equal(t, MaxColumn, combined.ToCol)
}

func TestIntersectBoxesOverlap(t *testing.T) {
	a := NewRangeRef("", 1, 1, 5, 5)
	b := NewRangeRef("", 3, 3, 10, 10)
	result, err := intersectBoxes([]RangeRef{a, b})
	require.Nil(t, err)
	assert.Equal(t, 3, result.FromRow)
	assert.Equal(t, 5, result.ToRow)
	assert.Equal(t, 3, result.FromCol)
	assert.Equal(t, 5, result.ToCol)
}

func TestIntersectBoxesDisjointIsNull(t *testing.T) {
	a := NewRangeRef("", 1, 1, 2, 2)
	b := NewRangeRef("", 10, 10, 12, 12)
	_, err := intersectBoxes([]RangeRef{a, b})
	require.NotNil(t, err)
	assert.Equal(t, ErrNull, err.Kind)
}

func TestIntersectBoxesDifferingSheetIsNull(t *testing.T) {
	a := NewRangeRef("Sheet1", 1, 1, 2, 2)
	b := NewRangeRef("Sheet2", 1, 1, 2, 2)
	_, err := intersectBoxes([]RangeRef{a, b})
	require.NotNil(t, err)
	assert.Equal(t, ErrNull, err.Kind)
}

func TestIntersectWholeRowAndWholeRowRejected(t *testing.T) {
	// Overlapping whole rows (1:2 and 2:2): disjoint rows would be #NULL!.
	a := combineRanges([]RangeRef{NewWholeRowRef("", 1), NewWholeRowRef("", 2)})
	b := NewWholeRowRef("", 2)
	_, err := intersectBoxes([]RangeRef{a, b})
	require.NotNil(t, err)
	assert.Equal(t, ErrValue, err.Kind)
}

func TestRangeRefSingleCellConversion(t *testing.T) {
	r := NewRangeRef("", 3, 3, 3, 3)
	require.True(t, r.IsSingleCell())
	c := r.ToCellRef()
	assert.Equal(t, 3, c.Row)
	assert.Equal(t, 3, c.Col)
}
