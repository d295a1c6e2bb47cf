package host

import (
	"math"
	"strconv"
	"strings"

	"xlformula/formula"
)

// BuiltIns is a small function registry adapted from the teacher's
// switch-dispatch BuiltInFunctions: a demo collaborator for the engine,
// not part of the formula package itself, since the function catalogue
// is explicitly out of the engine's scope. It implements just enough of
// Excel's function surface to drive the REPL and WebSocket demos.
type BuiltIns struct{}

// NewBuiltIns builds the default registry.
func NewBuiltIns() *BuiltIns { return &BuiltIns{} }

// Install registers every built-in into cfg, following the same
// name -> method dispatch idiom as the teacher's Call switch, just
// spread across Go's map-of-funcs registration instead of a single
// switch statement.
func (b *BuiltIns) Install(cfg *formula.Config) {
	if cfg.Functions == nil {
		cfg.Functions = map[string]formula.Function{}
	}
	if cfg.ContextFunctions == nil {
		cfg.ContextFunctions = map[string]formula.ContextFunction{}
	}
	if cfg.EmptyStringFunctions == nil {
		cfg.EmptyStringFunctions = map[string]bool{}
	}

	cfg.Functions["SUM"] = b.sum
	cfg.Functions["AVERAGE"] = b.average
	cfg.Functions["COUNT"] = b.count
	cfg.Functions["MAX"] = b.max
	cfg.Functions["MIN"] = b.min
	cfg.Functions["AND"] = b.and
	cfg.Functions["OR"] = b.or
	cfg.Functions["NOT"] = b.not
	cfg.Functions["CONCATENATE"] = b.concatenate
	cfg.Functions["LEN"] = b.len
	cfg.Functions["UPPER"] = b.upper
	cfg.Functions["LOWER"] = b.lower
	cfg.Functions["TRIM"] = b.trim
	cfg.Functions["ABS"] = b.abs
	cfg.Functions["ROUND"] = b.round
	cfg.Functions["ISBLANK"] = b.isBlank

	cfg.ContextFunctions["IF"] = b.ifFunc
	cfg.ContextFunctions["ROW"] = b.row
	cfg.ContextFunctions["ROWS"] = b.rows
	cfg.ContextFunctions["COLUMN"] = b.column
	cfg.ContextFunctions["COLUMNS"] = b.columns
	cfg.ContextFunctions["SUMIF"] = b.sumIf

	cfg.EmptyStringFunctions["CONCATENATE"] = true
	cfg.EmptyStringFunctions["UPPER"] = true
	cfg.EmptyStringFunctions["LOWER"] = true
	cfg.EmptyStringFunctions["TRIM"] = true
	cfg.EmptyStringFunctions["LEN"] = true
}

func (b *BuiltIns) sum(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	total := 0.0
	err := flattenNumeric(args, func(n float64) { total += n })
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Num(total), nil
}

func (b *BuiltIns) average(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	total, count := 0.0, 0
	err := flattenNumeric(args, func(n float64) { total += n; count++ })
	if err != nil {
		return formula.Value{}, err
	}
	if count == 0 {
		return formula.Err(formula.NewError(formula.ErrDiv0)), nil
	}
	return formula.Num(total / float64(count)), nil
}

func (b *BuiltIns) count(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	n := 0
	err := flattenNumeric(args, func(float64) { n++ })
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Num(float64(n)), nil
}

func (b *BuiltIns) max(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	best := math.Inf(-1)
	seen := false
	err := flattenNumeric(args, func(n float64) {
		seen = true
		if n > best {
			best = n
		}
	})
	if err != nil {
		return formula.Value{}, err
	}
	if !seen {
		return formula.Num(0), nil
	}
	return formula.Num(best), nil
}

func (b *BuiltIns) min(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	best := math.Inf(1)
	seen := false
	err := flattenNumeric(args, func(n float64) {
		seen = true
		if n < best {
			best = n
		}
	})
	if err != nil {
		return formula.Value{}, err
	}
	if !seen {
		return formula.Num(0), nil
	}
	return formula.Num(best), nil
}

func flattenNumeric(args []formula.CallArg, fn func(float64)) *formula.FormulaError {
	return formulaFlatten(args, func(v formula.Value) *formula.FormulaError {
		if v.Kind == formula.KindEmpty {
			return nil
		}
		n, err := v.ToNumber()
		if err != nil {
			return err
		}
		fn(n)
		return nil
	})
}

func (b *BuiltIns) and(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	result := true
	err := formulaFlatten(args, func(v formula.Value) *formula.FormulaError {
		bv, err := v.ToBool()
		if err != nil {
			return err
		}
		result = result && bv
		return nil
	})
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Bool_(result), nil
}

func (b *BuiltIns) or(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	result := false
	err := formulaFlatten(args, func(v formula.Value) *formula.FormulaError {
		bv, err := v.ToBool()
		if err != nil {
			return err
		}
		result = result || bv
		return nil
	})
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Bool_(result), nil
}

func (b *BuiltIns) not(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		e := formula.NewErrorf(formula.ErrNA, "NOT requires 1 argument")
		return formula.Value{}, &e
	}
	bv, err := args[0].Value.ToBool()
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Bool_(!bv), nil
}

func (b *BuiltIns) concatenate(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	var sb strings.Builder
	for _, a := range args {
		s, err := a.Value.ToText()
		if err != nil {
			return formula.Value{}, err
		}
		sb.WriteString(s)
	}
	return formula.Text(sb.String()), nil
}

func (b *BuiltIns) len(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		return formula.Num(0), nil
	}
	s, err := args[0].Value.ToText()
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Num(float64(len([]rune(s)))), nil
}

func (b *BuiltIns) upper(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		return formula.Text(""), nil
	}
	s, err := args[0].Value.ToText()
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Text(strings.ToUpper(s)), nil
}

func (b *BuiltIns) lower(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		return formula.Text(""), nil
	}
	s, err := args[0].Value.ToText()
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Text(strings.ToLower(s)), nil
}

func (b *BuiltIns) trim(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		return formula.Text(""), nil
	}
	s, err := args[0].Value.ToText()
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Text(strings.TrimSpace(s)), nil
}

func (b *BuiltIns) abs(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		e := formula.NewErrorf(formula.ErrNA, "ABS requires 1 argument")
		return formula.Value{}, &e
	}
	n, err := args[0].Value.ToNumber()
	if err != nil {
		return formula.Value{}, err
	}
	return formula.Num(math.Abs(n)), nil
}

func (b *BuiltIns) round(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) < 1 {
		e := formula.NewErrorf(formula.ErrNA, "ROUND requires at least 1 argument")
		return formula.Value{}, &e
	}
	n, err := args[0].Value.ToNumber()
	if err != nil {
		return formula.Value{}, err
	}
	digits := 0.0
	if len(args) > 1 && !args[1].Omitted {
		digits, err = args[1].Value.ToNumber()
		if err != nil {
			return formula.Value{}, err
		}
	}
	mult := math.Pow(10, digits)
	return formula.Num(math.Round(n*mult) / mult), nil
}

func (b *BuiltIns) isBlank(args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 {
		return formula.Bool_(true), nil
	}
	return formula.Bool_(args[0].Value.Kind == formula.KindEmpty), nil
}

func (b *BuiltIns) ifFunc(e *formula.Engine, args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) < 2 {
		err := formula.NewErrorf(formula.ErrNA, "IF requires at least 2 arguments")
		return formula.Value{}, &err
	}
	cond, err := args[0].Value.ToBool()
	if err != nil {
		return formula.Value{}, err
	}
	if cond {
		return args[1].Value, nil
	}
	if len(args) >= 3 {
		return args[2].Value, nil
	}
	return formula.Bool_(false), nil
}

func (b *BuiltIns) row(e *formula.Engine, args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 || !args[0].HasRef {
		e := formula.NewErrorf(formula.ErrValue, "ROW requires a reference argument")
		return formula.Value{}, &e
	}
	return formula.Num(float64(args[0].Ref.AsRange().FromRow)), nil
}

func (b *BuiltIns) rows(e *formula.Engine, args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 || !args[0].HasRef {
		e := formula.NewErrorf(formula.ErrValue, "ROWS requires a reference argument")
		return formula.Value{}, &e
	}
	box := args[0].Ref.AsRange()
	return formula.Num(float64(box.ToRow - box.FromRow + 1)), nil
}

func (b *BuiltIns) column(e *formula.Engine, args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 || !args[0].HasRef {
		e := formula.NewErrorf(formula.ErrValue, "COLUMN requires a reference argument")
		return formula.Value{}, &e
	}
	return formula.Num(float64(args[0].Ref.AsRange().FromCol)), nil
}

func (b *BuiltIns) columns(e *formula.Engine, args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) == 0 || !args[0].HasRef {
		e := formula.NewErrorf(formula.ErrValue, "COLUMNS requires a reference argument")
		return formula.Value{}, &e
	}
	box := args[0].Ref.AsRange()
	return formula.Num(float64(box.ToCol - box.FromCol + 1)), nil
}

// sumIf adapts the range-scan style of the teacher's SUM, gated by a
// criteria string, matching Excel's SUMIF(range, criteria, [sumRange]).
func (b *BuiltIns) sumIf(e *formula.Engine, args []formula.CallArg) (formula.Value, *formula.FormulaError) {
	if len(args) < 2 || !args[0].HasRef {
		err := formula.NewErrorf(formula.ErrNA, "SUMIF requires (range, criteria, [sum_range])")
		return formula.Value{}, &err
	}
	criteriaText, cerr := args[1].Value.ToText()
	if cerr != nil {
		if args[1].Value.Kind == formula.KindNumber {
			criteriaText = strconv.FormatFloat(args[1].Value.Number, 'g', -1, 64)
		} else {
			return formula.Value{}, cerr
		}
	}
	criteria := formula.ParseCriteria(criteriaText)

	// Re-entering the engine here (rather than receiving pre-dereferenced
	// values) is exactly why SUMIF is a context + no-data-retrieve
	// function: it needs the raw ranges to scan the criteria range and
	// the sum range cell-by-cell in lockstep.
	sumRange := args[0].Ref.AsRange()
	if len(args) >= 3 && args[2].HasRef {
		sumRange = args[2].Ref.AsRange()
	}
	total := 0.0
	criteriaBox := args[0].Ref.AsRange()
	rows := criteriaBox.ToRow - criteriaBox.FromRow
	cols := criteriaBox.ToCol - criteriaBox.FromCol
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			cv, err := e.Cell(formula.CellRef{
				Sheet: criteriaBox.Sheet,
				Row:   criteriaBox.FromRow + r,
				Col:   criteriaBox.FromCol + c,
			})
			if err != nil {
				return formula.Value{}, err
			}
			if !criteria.Match(cv) {
				continue
			}
			sv, err := e.Cell(formula.CellRef{
				Sheet: sumRange.Sheet,
				Row:   sumRange.FromRow + r,
				Col:   sumRange.FromCol + c,
			})
			if err != nil {
				return formula.Value{}, err
			}
			n, nerr := sv.ToNumber()
			if nerr == nil {
				total += n
			}
		}
	}
	return formula.Num(total), nil
}
