package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnToNumber(t *testing.T) {
	cases := map[string]int{
		"A": 1, "Z": 26, "AA": 27, "AZ": 52, "BA": 53, "XFD": 16384,
	}
	for col, want := range cases {
		got, err := ColumnToNumber(col)
		require.Nil(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNumberToColumnRoundTrip(t *testing.T) {
	for _, n := range []int{1, 26, 27, 52, 53, 16384} {
		col := NumberToColumn(n)
		back, err := ColumnToNumber(col)
		require.Nil(t, err)
		assert.Equal(t, n, back)
	}
}

func TestFormatCellAddressRoundTrip(t *testing.T) {
	addr := FormatCellAddress(1048576, 16384)
	assert.Equal(t, "XFD1048576", addr)

	row, col, err := parseCellAddress(addr)
	require.Nil(t, err)
	assert.Equal(t, 1048576, row)
	assert.Equal(t, 16384, col)
}

func TestParseCriteriaOperators(t *testing.T) {
	c := ParseCriteria(">=10")
	assert.Equal(t, CriteriaGe, c.Op)
	assert.True(t, c.Match(Num(10)))
	assert.False(t, c.Match(Num(9)))

	c2 := ParseCriteria("<>apple")
	assert.True(t, c2.Match(Text("banana")))
	assert.False(t, c2.Match(Text("apple")))
}

func TestParseCriteriaWildcard(t *testing.T) {
	c := ParseCriteria("a*e")
	assert.True(t, c.Match(Text("apple")))
	assert.False(t, c.Match(Text("banana")))
}

func TestAcceptMissingNoDefault(t *testing.T) {
	_, err := accept(CallArg{Omitted: true}, ArgNumber, false, Value{}, false)
	require.NotNil(t, err)
	assert.Equal(t, ErrNA, err.Kind)
}

func TestAcceptMissingWithDefault(t *testing.T) {
	v, err := accept(CallArg{Omitted: true}, ArgNumber, true, Num(5), false)
	require.Nil(t, err)
	assert.Equal(t, 5.0, v.Number)
}

func TestAcceptCollapsesArray(t *testing.T) {
	arg := CallArg{Value: Arr([][]Value{{Num(3), Num(4)}, {Num(5), Num(6)}})}
	v, err := accept(arg, ArgNumber, false, Value{}, false)
	require.Nil(t, err)
	assert.Equal(t, 3.0, v.Number)
}

func TestFlattenParamsRejectsUnionWhenDisallowed(t *testing.T) {
	union := Collection{Items: []UnionItem{{Value: Num(1)}, {Value: Num(2)}}}
	args := []CallArg{{Value: UnionValue(union)}}
	err := flattenParams(args, false, func(Value, FlattenInfo) *FormulaError { return nil }, 1)
	require.NotNil(t, err)
	assert.Equal(t, ErrValue, err.Kind)
}

func TestFlattenParamsFlattensArraysAndUnions(t *testing.T) {
	var seen []float64
	args := []CallArg{
		{Value: Arr([][]Value{{Num(1), Num(2)}})},
		{Value: Num(3)},
		{Value: UnionValue(Collection{Items: []UnionItem{{Value: Num(4)}, {Value: Num(5)}}})},
	}
	err := flattenParams(args, true, func(v Value, _ FlattenInfo) *FormulaError {
		seen = append(seen, v.Number)
		return nil
	}, 1)
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, seen)
}
