package formula

import (
	"regexp"
	"strings"
)

// patternRule pairs a token type with the anchored regex that recognizes
// it. Order matters: it is the tie-break order from §4.1 — when two
// patterns match the same length at the same offset, the earlier rule in
// this slice wins.
type patternRule struct {
	typ TokenType
	re  *regexp.Regexp
}

var lexRules = []patternRule{
	{TokWhiteSpace, regexp.MustCompile(`^[ \t\r\n]+`)},
	{TokString, regexp.MustCompile(`^"(?:""|[^"])*"`)},
	{TokSheetQuoted, regexp.MustCompile(`^'(?:''|[^'])*'!`)},
	{TokSingleQuotedString, regexp.MustCompile(`^'(?:''|[^'])*'`)},
	{TokFunction, regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9.]*\(`)},
	{TokFormulaErrorLiteral, regexp.MustCompile(`^(?:#NULL!|#DIV/0!|#VALUE!|#NAME\?|#NUM!|#N/A)`)},
	{TokRefError, regexp.MustCompile(`^#REF!`)},
	{TokSheet, regexp.MustCompile(`^[A-Za-z_.0-9\x{007F}-\x{FFFF}]+!`)},
	{TokCell, regexp.MustCompile(`^\$?[A-Za-z]{1,3}\$?[1-9][0-9]*`)},
	{TokBoolean, regexp.MustCompile(`(?i)^TRUE|^FALSE`)},
	{TokColumn, regexp.MustCompile(`^\$?[A-Za-z]{1,3}`)},
	{TokName, regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.?]*`)},
	{TokNumber, regexp.MustCompile(`^[0-9]+\.?[0-9]*(?:[eE][+\-][0-9]+)?`)},
	{TokPunct, regexp.MustCompile(`^[,:;()\[\]{}@']`)},
	{TokOperator, regexp.MustCompile(`^(?:<>|>=|<=|[*+/\-&^%<>=])`)},
}

// Lexer tokenizes one formula string at a time. It carries no state
// across calls to Tokenize — construct one per formula, the way
// vogtb-go-spreadsheet's NewLexer does.
type Lexer struct {
	src string
}

// NewLexer builds a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the entire source and returns its token stream (with
// WhiteSpace tokens elided but recorded via LeadingSpace on the following
// token), or a FormulaError describing the first unrecognized input.
func (l *Lexer) Tokenize() ([]Token, *FormulaError) {
	var tokens []Token
	pos := 0
	sawSpace := false
	for pos < len(l.src) {
		tok, width, ok := l.match(pos)
		if !ok {
			lc := ComputeLineCol(l.src, pos)
			e := NewErrorf(ErrGeneric, "%s", FormatSyntaxError(l.src, lc, "unrecognized input"))
			return nil, &e
		}
		if tok.Type == TokWhiteSpace {
			sawSpace = true
			pos += width
			continue
		}
		tok.LeadingSpace = sawSpace
		tokens = append(tokens, tok)
		sawSpace = false
		pos += width
	}
	tokens = append(tokens, Token{Type: TokEOF, Pos: len(l.src), End: len(l.src), LeadingSpace: sawSpace})
	return tokens, nil
}

// match finds the longest recognized token starting exactly at offset,
// breaking ties by lexRules order. ok is false when nothing matches,
// which is a lexing error.
func (l *Lexer) match(offset int) (Token, int, bool) {
	rest := l.src[offset:]
	bestLen := -1
	bestType := TokEOF
	bestValue := ""
	for _, rule := range lexRules {
		m := rule.re.FindString(rest)
		if m == "" {
			continue
		}
		if len(m) > bestLen {
			bestLen = len(m)
			bestType = rule.typ
			bestValue = m
		}
	}
	if bestLen <= 0 {
		return Token{}, 0, false
	}
	if bestType == TokBoolean {
		bestValue = strings.ToUpper(bestValue)
	}
	return Token{
		Type:  bestType,
		Value: bestValue,
		Pos:   offset,
		End:   offset + bestLen,
	}, bestLen, true
}
