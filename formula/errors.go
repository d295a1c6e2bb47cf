package formula

import "fmt"

// ErrorKind is one of Excel's error variants plus the engine's own
// catch-all for parser/lexer/host failures.
type ErrorKind uint8

const (
	ErrNull ErrorKind = iota // #NULL! - no cells in common between ranges
	ErrDiv0                  // #DIV/0! - division by zero
	ErrValue                 // #VALUE! - wrong type of argument or operand
	ErrRef                   // #REF! - invalid cell reference
	ErrName                  // #NAME? - unrecognized function or named range
	ErrNum                   // #NUM! - number too large or too small (±Inf)
	ErrNA                    // #N/A - value not available (missing argument, lookup miss)
	ErrGeneric               // #ERROR! - parser, lexer, or host failure
)

var errorCodeText = [...]string{
	ErrNull:    "#NULL!",
	ErrDiv0:    "#DIV/0!",
	ErrValue:   "#VALUE!",
	ErrRef:     "#REF!",
	ErrName:    "#NAME?",
	ErrNum:     "#NUM!",
	ErrNA:      "#N/A",
	ErrGeneric: "#ERROR!",
}

// Code renders the Excel-visible "#...!" form of the error.
func (k ErrorKind) Code() string {
	if int(k) < len(errorCodeText) {
		return errorCodeText[k]
	}
	return "#ERROR!"
}

// FormulaError is the value a formula evaluates to when something goes
// wrong. It is a plain comparable struct rather than a pointer-identity
// singleton: two FormulaErrors built from the same kind and the same
// (empty) details are == to each other, which is the only identity
// guarantee §3 and §8 actually require. Details, when present, carries a
// human-readable message — for syntax errors, a multi-line "line:col"
// diagnostic with a caret pointer (see position.go).
type FormulaError struct {
	Kind    ErrorKind
	Details string
}

// NewError builds a bare error value for kind, with no details. Excel
// renders this the same way regardless of how it was produced, so the
// zero-details form is what most of the operator algebra returns.
func NewError(kind ErrorKind) FormulaError {
	return FormulaError{Kind: kind}
}

// NewErrorf builds an error value carrying a formatted detail message,
// used for host-callback failures and parser diagnostics that need to
// explain themselves.
func NewErrorf(kind ErrorKind, format string, args ...any) FormulaError {
	return FormulaError{Kind: kind, Details: fmt.Sprintf(format, args...)}
}

// Error implements the error interface so a FormulaError can flow through
// normal Go error handling at the engine boundary (see engine.go).
func (e FormulaError) Error() string {
	if e.Details == "" {
		return e.Kind.Code()
	}
	return e.Kind.Code() + ": " + e.Details
}

// Code is shorthand for e.Kind.Code(), the string a host renders in a cell.
func (e FormulaError) Code() string {
	return e.Kind.Code()
}
