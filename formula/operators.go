package formula

import "math"

// applyUnary folds a run of leading "+"/"-" prefixes into a single sign
// and applies it (§4.3 "Unary +/-"). A run with no "-" at all (hadMinus
// false) is a no-op pass-through — "+ on non-numeric returns the value
// unchanged" — since there's nothing to negate. Any "-" present forces
// numeric coercion, with negCount's parity deciding the final sign.
func applyUnary(h host, v Value, hadMinus bool, negCount int) (Value, *FormulaError) {
	resolved, isArray, err := extractRefValue(h, v)
	if err != nil {
		return Value{}, err
	}
	if resolved.IsError() {
		return resolved, nil
	}
	if isArray {
		if len(resolved.Array) == 0 || len(resolved.Array[0]) == 0 {
			e := NewError(ErrValue)
			return Value{}, &e
		}
		resolved = resolved.Array[0][0]
	}
	if !hadMinus {
		return resolved, nil
	}
	n, nerr := resolved.ToNumber()
	if nerr != nil {
		return Value{}, nerr
	}
	if negCount%2 == 1 {
		n = -n
	}
	return Num(n), nil
}

// applyPercent implements the postfix "%" operator (§4.3): coerce to
// number, divide by 100.
func applyPercent(h host, v Value) (Value, *FormulaError) {
	resolved, isArray, err := extractRefValue(h, v)
	if err != nil {
		return Value{}, err
	}
	if resolved.IsError() {
		return resolved, nil
	}
	if isArray {
		if len(resolved.Array) == 0 || len(resolved.Array[0]) == 0 {
			e := NewError(ErrValue)
			return Value{}, &e
		}
		resolved = resolved.Array[0][0]
	}
	n, nerr := resolved.ToNumber()
	if nerr != nil {
		return Value{}, nerr
	}
	return Num(n / 100), nil
}

// acceptNumber implements §4.3's acceptNumber numeric-coercion rule used
// by every infix numeric/comparison operator.
func acceptNumber(v Value, isArray bool) (float64, *FormulaError) {
	if isArray {
		if len(v.Array) == 0 || len(v.Array[0]) == 0 {
			e := NewError(ErrValue)
			return 0, &e
		}
		v = v.Array[0][0]
	}
	return v.ToNumber()
}

// BinaryOp names an infix operator recognized by the re-precedence fold
// in the parser.
type BinaryOp string

const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpPow    BinaryOp = "^"
	OpConcat BinaryOp = "&"
	OpEq     BinaryOp = "="
	OpNe     BinaryOp = "<>"
	OpLt     BinaryOp = "<"
	OpLe     BinaryOp = "<="
	OpGt     BinaryOp = ">"
	OpGe     BinaryOp = ">="
)

// precedenceOrder is the fold order from §4.2: "^", "* /", "+ -", "&",
// comparisons. Earlier groups bind tighter and fold first.
var precedenceOrder = [][]BinaryOp{
	{OpPow},
	{OpMul, OpDiv},
	{OpAdd, OpSub},
	{OpConcat},
	{OpLt, OpGt, OpEq, OpNe, OpLe, OpGe},
}

// applyBinary dispatches a single infix operator over two already-parsed
// operands, applying the error short-circuit rule first (§4.3, §7: "a <op>
// b where a is an error returns a; where b is an error returns b").
func applyBinary(h host, op BinaryOp, left, right Value) (Value, *FormulaError) {
	lv, lArr, err := extractRefValue(h, left)
	if err != nil {
		return Value{}, err
	}
	if lv.IsError() {
		return lv, nil
	}
	rv, rArr, err := extractRefValue(h, right)
	if err != nil {
		return Value{}, err
	}
	if rv.IsError() {
		return rv, nil
	}

	switch op {
	case OpConcat:
		return concatOp(lv, rv)
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return compareOp(op, lv, rv, lArr, rArr)
	default:
		return mathOp(op, lv, rv, lArr, rArr)
	}
}

func concatOp(lv, rv Value) (Value, *FormulaError) {
	lt, err := lv.ToText()
	if err != nil {
		return Value{}, err
	}
	rt, err := rv.ToText()
	if err != nil {
		return Value{}, err
	}
	return Text(lt + rt), nil
}

func mathOp(op BinaryOp, lv, rv Value, lArr, rArr bool) (Value, *FormulaError) {
	ln, err := acceptNumber(lv, lArr)
	if err != nil {
		return Value{}, err
	}
	rn, err := acceptNumber(rv, rArr)
	if err != nil {
		return Value{}, err
	}

	var result float64
	switch op {
	case OpAdd:
		result = ln + rn
	case OpSub:
		result = ln - rn
	case OpMul:
		result = ln * rn
	case OpDiv:
		if rn == 0 {
			e := NewError(ErrDiv0)
			return Value{}, &e
		}
		result = ln / rn
	case OpPow:
		result = math.Pow(ln, rn)
	}

	if math.IsNaN(result) {
		e := NewError(ErrValue)
		return Value{}, &e
	}
	if math.IsInf(result, 0) {
		e := NewError(ErrNum)
		return Value{}, &e
	}
	return Num(result), nil
}

// compareOp implements §4.3's comparison rule: same-type operands compare
// by value; cross-type operands compare by the bool > text > number type
// ordering, with "=" always false and "<>" always true across types.
func compareOp(op BinaryOp, lv, rv Value, lArr, rArr bool) (Value, *FormulaError) {
	if lArr {
		if len(lv.Array) == 0 || len(lv.Array[0]) == 0 {
			e := NewError(ErrValue)
			return Value{}, &e
		}
		lv = lv.Array[0][0]
	}
	if rArr {
		if len(rv.Array) == 0 || len(rv.Array[0]) == 0 {
			e := NewError(ErrValue)
			return Value{}, &e
		}
		rv = rv.Array[0][0]
	}
	if lv.Kind == KindEmpty {
		lv = Num(0)
	}
	if rv.Kind == KindEmpty {
		rv = Num(0)
	}

	if op == OpEq && typeRank(lv) != typeRank(rv) {
		return Bool_(false), nil
	}
	if op == OpNe && typeRank(lv) != typeRank(rv) {
		return Bool_(true), nil
	}

	var cmp int
	switch {
	case typeRank(lv) != typeRank(rv):
		cmp = compareInt(typeRank(lv), typeRank(rv))
	case lv.Kind == KindNumber:
		cmp = compareFloat(lv.Number, rv.Number)
	case lv.Kind == KindText:
		cmp = compareString(lv.Text, rv.Text)
	case lv.Kind == KindBool:
		cmp = compareBool(lv.Bool, rv.Bool)
	default:
		cmp = 0
	}

	switch op {
	case OpEq:
		return Bool_(cmp == 0), nil
	case OpNe:
		return Bool_(cmp != 0), nil
	case OpLt:
		return Bool_(cmp < 0), nil
	case OpLe:
		return Bool_(cmp <= 0), nil
	case OpGt:
		return Bool_(cmp > 0), nil
	case OpGe:
		return Bool_(cmp >= 0), nil
	}
	e := NewError(ErrValue)
	return Value{}, &e
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}
