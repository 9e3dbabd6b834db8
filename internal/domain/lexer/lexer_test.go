package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/domain/texerr"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBasicArithmetic(t *testing.T) {
	toks, err := Tokenize("a + b", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Kind{Variable, Plus, Variable, Eof}, kinds(toks))
}

func TestTokenizeCommand(t *testing.T) {
	toks, err := Tokenize(`\frac{1}{2}`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Kind{Frac, LBrace, Number, RBrace, LBrace, Number, RBrace, Eof}, kinds(toks))
}

func TestImplicitMultiplicationInsertsSyntheticToken(t *testing.T) {
	toks, err := Tokenize("2x", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Kind{Number, Multiply, Variable, Eof}, kinds(toks))
	assert.Equal(t, "", toks[1].Literal)
}

func TestImplicitMultiplicationDisabledCoalescesLetters(t *testing.T) {
	toks, err := Tokenize("xyz", Config{AllowImplicitMultiplication: false})
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, Variable, toks[0].Kind)
	assert.Equal(t, "xyz", toks[0].Literal)
}

func TestPipeOpenCloseDoesNotInsertMultiplyBetweenPipes(t *testing.T) {
	toks, err := Tokenize(`|x|y`, DefaultConfig())
	require.NoError(t, err)
	// |  x  |  *  y  EOF
	assert.Equal(t, []Kind{Pipe, Variable, Pipe, Multiply, Variable, Eof}, kinds(toks))
	assert.True(t, toks[0].PipeOpen)
	assert.False(t, toks[2].PipeOpen)
}

func TestGreekLettersAndPi(t *testing.T) {
	toks, err := Tokenize(`\alpha + \pi + \theta`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Kind{Variable, Plus, Constant, Plus, Variable, Eof}, kinds(toks))
}

func TestLiteralUnicodeGreekMatchesCommandForm(t *testing.T) {
	toks, err := Tokenize(`α + π`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Kind{Variable, Plus, Constant, Eof}, kinds(toks))
}

func TestFunctionNameRecognised(t *testing.T) {
	toks, err := Tokenize(`\sin{x}`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Function, toks[0].Kind)
	assert.Equal(t, "sin", toks[0].Literal)
}

func TestUnknownCommandSuggestsClosestMatch(t *testing.T) {
	_, err := Tokenize(`\fract{1}{2}`, DefaultConfig())
	require.Error(t, err)
	var lexErr *texerr.LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, texerr.UnknownCommand, lexErr.Kind)
	assert.Equal(t, "frac", lexErr.Suggestion)
}

func TestMalformedNumberSecondDecimalPoint(t *testing.T) {
	_, err := Tokenize("1.2.3", DefaultConfig())
	require.Error(t, err)
	var lexErr *texerr.LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, texerr.MalformedNumber, lexErr.Kind)
}

func TestNumberWithExponent(t *testing.T) {
	toks, err := Tokenize("1.5e10", DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, Number, toks[0].Kind)
	assert.InDelta(t, 1.5e10, toks[0].Value, 1e-6)
}

func TestInvalidCharacterFails(t *testing.T) {
	_, err := Tokenize("a @ b", DefaultConfig())
	require.Error(t, err)
	var lexErr *texerr.LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, texerr.InvalidCharacter, lexErr.Kind)
}

func TestCaseInsensitiveStructuralCommand(t *testing.T) {
	toks, err := Tokenize(`\Begin{pmatrix}`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Begin, toks[0].Kind)
}

func TestDiscardedSizingCommands(t *testing.T) {
	toks, err := Tokenize(`\left( x \right)`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Kind{LParen, Variable, RParen, Eof}, kinds(toks))
}

func TestFontCommandCarriesFamily(t *testing.T) {
	toks, err := Tokenize(`\mathbf`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, FontCommand, toks[0].Kind)
	assert.Equal(t, "mathbf", toks[0].FontFamily)
}

func TestLetKeyword(t *testing.T) {
	toks, err := Tokenize(`\let`, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, LetKeyword, toks[0].Kind)
}
