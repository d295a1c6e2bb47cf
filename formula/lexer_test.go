package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenValues(tokens []Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Type == TokEOF {
			continue
		}
		out = append(out, t.Value)
	}
	return out
}

func TestLexerBasicArithmetic(t *testing.T) {
	tokens, err := NewLexer("1+2*3").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, []string{"1", "+", "2", "*", "3"}, tokenValues(tokens))
}

func TestLexerCellAndRange(t *testing.T) {
	tokens, err := NewLexer("SUM(A1:B2)").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, []string{"SUM(", "A1", ":", "B2", ")"}, tokenValues(tokens))
	assert.Equal(t, TokFunction, tokens[0].Type)
	assert.Equal(t, TokCell, tokens[1].Type)
}

func TestLexerSheetPrefix(t *testing.T) {
	tokens, err := NewLexer("Sheet2!A1").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokSheet, tokens[0].Type)
	assert.Equal(t, "Sheet2!", tokens[0].Value)
}

func TestLexerSheetQuoted(t *testing.T) {
	tokens, err := NewLexer("'My Sheet'!A1").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokSheetQuoted, tokens[0].Type)
}

func TestLexerBooleanCaseInsensitive(t *testing.T) {
	tokens, err := NewLexer("true").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokBoolean, tokens[0].Type)
	assert.Equal(t, "TRUE", tokens[0].Value)
}

func TestLexerFormulaErrorLiteral(t *testing.T) {
	tokens, err := NewLexer("#DIV/0!").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokFormulaErrorLiteral, tokens[0].Type)
}

func TestLexerWhitespaceRecordedAsLeadingSpace(t *testing.T) {
	tokens, err := NewLexer("A1 B2").Tokenize()
	require.Nil(t, err)
	assert.False(t, tokens[0].LeadingSpace)
	assert.True(t, tokens[1].LeadingSpace)
}

func TestLexerStringEscapes(t *testing.T) {
	tokens, err := NewLexer(`"a""b"`).Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokString, tokens[0].Type)
	assert.Equal(t, `"a""b"`, tokens[0].Value)
}

func TestLexerColumnVsCellTieBreak(t *testing.T) {
	tokens, err := NewLexer("A1").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokCell, tokens[0].Type)

	tokens2, err := NewLexer("AB").Tokenize()
	require.Nil(t, err)
	assert.Equal(t, TokColumn, tokens2[0].Type)
}
