package host

import "xlformula/formula"

// formulaFlatten mirrors the shape of the engine's internal flattenParams
// helper for the subset of built-ins this package implements: it walks
// every element of every argument, expanding arrays and union members,
// and calls fn for each scalar in order.
func formulaFlatten(args []formula.CallArg, fn func(formula.Value) *formula.FormulaError) *formula.FormulaError {
	for _, a := range args {
		if a.Omitted {
			continue
		}
		if err := flattenValue(a.Value, fn); err != nil {
			return err
		}
	}
	return nil
}

func flattenValue(v formula.Value, fn func(formula.Value) *formula.FormulaError) *formula.FormulaError {
	switch v.Kind {
	case formula.KindArray:
		for _, row := range v.Array {
			for _, cell := range row {
				if err := fn(cell); err != nil {
					return err
				}
			}
		}
		return nil
	case formula.KindUnion:
		for _, item := range v.Union.Items {
			if err := flattenValue(item.Value, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		return fn(v)
	}
}
