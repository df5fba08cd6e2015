package components

import (
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, expr string) []chroma.Token {
	t.Helper()
	iterator, err := odataLexer.Tokenise(nil, expr)
	require.NoError(t, err)

	var out []chroma.Token
	for _, tok := range iterator.Tokens() {
		if tok.Type != chroma.Text {
			out = append(out, tok)
		}
	}
	return out
}

func TestODataLexer(t *testing.T) {
	toks := tokens(t, "tags/any(item: item eq 'it''s') and rating ge 4.5")

	want := []chroma.Token{
		{Type: chroma.NameVariable, Value: "tags"},
		{Type: chroma.Punctuation, Value: "/"},
		{Type: chroma.NameFunction, Value: "any"},
		{Type: chroma.Punctuation, Value: "("},
		{Type: chroma.NameVariable, Value: "item"},
		{Type: chroma.Punctuation, Value: ":"},
		{Type: chroma.NameVariable, Value: "item"},
		{Type: chroma.OperatorWord, Value: "eq"},
		{Type: chroma.LiteralString, Value: "'it''s'"},
		{Type: chroma.Punctuation, Value: ")"},
		{Type: chroma.Keyword, Value: "and"},
		{Type: chroma.NameVariable, Value: "rating"},
		{Type: chroma.OperatorWord, Value: "ge"},
		{Type: chroma.LiteralNumber, Value: "4.5"},
	}
	assert.Equal(t, want, toks)
}

func TestODataLexerWordsContainingKeywords(t *testing.T) {
	toks := tokens(t, "brand eq null")
	require.Len(t, toks, 3)
	assert.Equal(t, chroma.NameVariable, toks[0].Type)
	assert.Equal(t, chroma.KeywordConstant, toks[2].Type)
}

func TestHighlight(t *testing.T) {
	assert.Empty(t, Highlight("", "monokai"))

	out := Highlight("a eq 1", "monokai")
	assert.Contains(t, out, "eq")
	assert.Contains(t, out, "\x1b[")

	assert.Contains(t, Highlight("a eq 1", "no-such-style"), "eq")
}
