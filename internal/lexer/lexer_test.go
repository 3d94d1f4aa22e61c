package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeArithmeticStatement(t *testing.T) {
	toks, errs := Tokenize(`let x = 1 + 2;`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t,
		[]TokenType{LET, IDENT, ASSIGN, INT, PLUS, INT, SEMICOLON, EOF},
		kinds(toks))
}

func TestTokenizeFusesRefMut(t *testing.T) {
	toks, errs := Tokenize(`&mut x & mut`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t,
		[]TokenType{REF_MUT, IDENT, AMPERSAND, MUT, EOF},
		kinds(toks))
}

func TestTokenizeRangeOperators(t *testing.T) {
	toks, errs := Tokenize(`0..3 0...3 a.b`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t,
		[]TokenType{INT, DOT_DOT, INT, INT, DOT_DOT_DOT, INT, IDENT, DOT, IDENT, EOF},
		kinds(toks))
}

func TestTokenizeCompoundAssignmentAndArrows(t *testing.T) {
	toks, errs := Tokenize(`+= -= *= /= %= -> =>`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t,
		[]TokenType{PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, PERCENT_EQ, ARROW, FATARROW, EOF},
		kinds(toks))
}

func TestTokenizeNumericUnderscores(t *testing.T) {
	toks, errs := Tokenize(`1_000_000`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t, "1000000", toks[0].Raw)

	_, errs = Tokenize(`1_`, "test.fox")
	require.NotEmpty(t, errs)
	require.Equal(t, ErrInvalidNumericLiteral, errs[0].Kind)
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, errs := Tokenize(`"a\n\t\\\""`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t, STRING, toks[0].Type)
	require.Equal(t, "a\n\t\\\"", toks[0].Value)
}

func TestTokenizeUnterminatedStringIsError(t *testing.T) {
	_, errs := Tokenize(`"never closed`, "test.fox")
	require.NotEmpty(t, errs)
	require.Equal(t, ErrUnterminatedString, errs[0].Kind)
}

func TestTokenizeCharLiteralWithEscape(t *testing.T) {
	toks, errs := Tokenize(`'\n' 'x'`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t, CHAR, toks[0].Type)
	require.Equal(t, "\n", toks[0].Value)
	require.Equal(t, "x", toks[1].Value)
}

func TestTokenizeNestedBlockComments(t *testing.T) {
	toks, errs := Tokenize(`a /* outer /* inner */ still outer */ b`, "test.fox")
	require.Empty(t, errs)
	require.Equal(t, []TokenType{IDENT, IDENT, EOF}, kinds(toks))
}

func TestSpansCarryLineAndColumn(t *testing.T) {
	toks, errs := Tokenize("let x = 1;\nlet y = 2;", "test.fox")
	require.Empty(t, errs)
	// second "let" starts line 2, column 1
	require.Equal(t, 2, toks[5].Span.Line)
	require.Equal(t, 1, toks[5].Span.Column)
}
