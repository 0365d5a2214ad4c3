package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libklein/n2tchain/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	tz := token.NewTokenizer(strings.NewReader(src))
	var toks []token.Token
	for tz.Scan() {
		if tz.Token().Kind == token.Invalid {
			continue
		}
		toks = append(toks, tz.Token())
	}
	require.NoError(t, tz.Err())
	return toks
}

func TestTokenizer_KeywordsSymbolsIdentifiers(t *testing.T) {
	toks := scanAll(t, "class Foo { field int x_1; }")

	require.Len(t, toks, 8)
	assert.Equal(t, token.KeywordTok, toks[0].Kind)
	assert.Equal(t, token.KwClass, toks[0].Keyword)
	assert.Equal(t, token.IdentifierTok, toks[1].Kind)
	assert.Equal(t, "Foo", toks[1].Name)
	assert.Equal(t, token.SymbolTok, toks[2].Kind)
	assert.Equal(t, '{', toks[2].Symbol)
	assert.Equal(t, token.KwField, toks[3].Keyword)
	assert.Equal(t, token.KwInt, toks[4].Keyword)
	assert.Equal(t, "x_1", toks[5].Name)
	assert.Equal(t, ';', toks[6].Symbol)
	assert.Equal(t, '}', toks[7].Symbol)
}

func TestTokenizer_IntAndStringConstants(t *testing.T) {
	toks := scanAll(t, `32767 "hello world"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.IntConstTok, toks[0].Kind)
	assert.EqualValues(t, 32767, toks[0].IntValue)
	assert.Equal(t, token.StringConstTok, toks[1].Kind)
	assert.Equal(t, "hello world", toks[1].Text)
}

func TestTokenizer_OutOfRangeInt(t *testing.T) {
	tz := token.NewTokenizer(strings.NewReader("32768"))
	assert.False(t, tz.Scan())
	assert.Error(t, tz.Err())
}

func TestTokenizer_LineAndBlockComments(t *testing.T) {
	toks := scanAll(t, "1 // comment\n/* block\ncomment */ 2")
	require.Len(t, toks, 2)
	assert.EqualValues(t, 1, toks[0].IntValue)
	assert.EqualValues(t, 2, toks[1].IntValue)
}

func TestTokenizer_UnterminatedString(t *testing.T) {
	tz := token.NewTokenizer(strings.NewReader(`"unterminated`))
	assert.False(t, tz.Scan())
	assert.ErrorContains(t, tz.Err(), "unterminated literal")
}

func TestTokenizer_UnterminatedBlockComment(t *testing.T) {
	tz := token.NewTokenizer(strings.NewReader("/* never closed"))
	assert.False(t, tz.Scan())
	assert.ErrorContains(t, tz.Err(), "unterminated literal")
}

func TestTokenizer_PushbackDoesNotMergeAdjacentTokens(t *testing.T) {
	// The one-byte pushback must cleanly separate "12" from "+" from "3",
	// not leak state across calls to Scan.
	toks := scanAll(t, "12+3")
	require.Len(t, toks, 3)
	assert.EqualValues(t, 12, toks[0].IntValue)
	assert.Equal(t, '+', toks[1].Symbol)
	assert.EqualValues(t, 3, toks[2].IntValue)
}

// Round-trip property from spec.md section 8: re-tokenizing the
// concatenation of tokens (with a canonical single-space separator)
// yields the same token sequence.
func TestTokenizer_RoundTrip(t *testing.T) {
	src := `class Main { function void main() { do Output.printString("hi"); return; } }`
	first := scanAll(t, src)

	var terms []string
	for _, tok := range first {
		terms = append(terms, canonicalTerminal(tok))
	}
	second := scanAll(t, strings.Join(terms, " "))

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Terminal(), second[i].Terminal())
	}
}

func canonicalTerminal(tok token.Token) string {
	if tok.Kind == token.StringConstTok {
		return `"` + tok.Text + `"`
	}
	return tok.Terminal()
}
