package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/hack/util"
)

func tokenize(t *testing.T, src string) []*Token {
	tokenizer := NewTokenizer([]byte(src))
	var tokens []*Token
	for tokenizer.HasMoreTokens() {
		tok, err := tokenizer.Advance(false)
		require.Nil(t, err, src)
		tokens = append(tokens, tok)
	}
	return tokens
}

func TestTokenizer_Kinds(t *testing.T) {
	testData := []struct {
		Content string
		Kinds   []TokenKind
		Texts   []string
	}{
		{
			Content: "class Main {",
			Kinds:   []TokenKind{KeywordToken, IdentifierToken, SymbolToken},
			Texts:   []string{"class", "Main", "{"},
		},
		{
			Content: `let s = "hello world";`,
			Kinds:   []TokenKind{KeywordToken, IdentifierToken, SymbolToken, StringToken, SymbolToken},
			Texts:   []string{"let", "s", "=", "hello world", ";"},
		},
		{
			Content: "a[i+1]=~x",
			Kinds: []TokenKind{IdentifierToken, SymbolToken, IdentifierToken, SymbolToken, IntegerToken,
				SymbolToken, SymbolToken, SymbolToken, IdentifierToken},
			Texts: []string{"a", "[", "i", "+", "1", "]", "=", "~", "x"},
		},
		{
			Content: "123abc",
			Kinds:   []TokenKind{IntegerToken, IdentifierToken},
			Texts:   []string{"123", "abc"},
		},
		{
			Content: "x / y // trailing\n/* block\n comment */ z",
			Kinds:   []TokenKind{IdentifierToken, SymbolToken, IdentifierToken, IdentifierToken},
			Texts:   []string{"x", "/", "y", "z"},
		},
		{
			Content: "/** api doc */ classy class",
			Kinds:   []TokenKind{IdentifierToken, KeywordToken},
			Texts:   []string{"classy", "class"},
		},
	}
	for _, data := range testData {
		tokens := tokenize(t, data.Content)
		require.Equal(t, len(data.Kinds), len(tokens), data.Content)
		for i, tok := range tokens {
			assert.Equal(t, data.Kinds[i], tok.Kind(), data.Content)
			assert.Equal(t, data.Texts[i], tok.Content(), data.Content)
		}
	}
}

func TestTokenizer_HasMoreTokens(t *testing.T) {
	assert.False(t, NewTokenizer([]byte("")).HasMoreTokens())
	assert.False(t, NewTokenizer([]byte("  \n\t // nothing\n /* here */ ")).HasMoreTokens())
	assert.True(t, NewTokenizer([]byte(" x ")).HasMoreTokens())
}

func TestTokenizer_Peek(t *testing.T) {
	tokenizer := NewTokenizer([]byte("let x;"))
	first, err := tokenizer.Advance(false)
	require.Nil(t, err)
	assert.Equal(t, "let", first.Content())

	peeked, err := tokenizer.Advance(true)
	require.Nil(t, err)
	assert.Equal(t, "x", peeked.Content())
	assert.Equal(t, first, tokenizer.Current())

	again, err := tokenizer.Advance(true)
	require.Nil(t, err)
	assert.Same(t, peeked, again)

	consumed, err := tokenizer.Advance(false)
	require.Nil(t, err)
	assert.Same(t, peeked, consumed)
	assert.Equal(t, consumed, tokenizer.Current())

	last, err := tokenizer.Advance(false)
	require.Nil(t, err)
	assert.Equal(t, ";", last.Content())
	assert.False(t, tokenizer.HasMoreTokens())

	_, err = tokenizer.Advance(false)
	assert.True(t, errors.Is(err, util.ErrUnexpectedToken))
}

func TestTokenizer_Lines(t *testing.T) {
	tokens := tokenize(t, "a\n/* x\ny */ b\n\n  c")
	require.Equal(t, 3, len(tokens))
	assert.Equal(t, 1, tokens[0].Line())
	assert.Equal(t, 3, tokens[1].Line())
	assert.Equal(t, 5, tokens[2].Line())
}

func TestTokenizer_Accessors(t *testing.T) {
	tokens := tokenize(t, `while foo 42 "s" +`)
	require.Equal(t, 5, len(tokens))

	kw, err := tokens[0].Keyword()
	assert.Nil(t, err)
	assert.Equal(t, WhileKW, kw)
	id, err := tokens[1].Identifier()
	assert.Nil(t, err)
	assert.Equal(t, "foo", id)
	n, err := tokens[2].IntVal()
	assert.Nil(t, err)
	assert.Equal(t, 42, n)
	s, err := tokens[3].StringVal()
	assert.Nil(t, err)
	assert.Equal(t, "s", s)
	sym, err := tokens[4].Symbol()
	assert.Nil(t, err)
	assert.Equal(t, byte('+'), sym)

	_, err = tokens[0].Identifier()
	assert.True(t, errors.Is(err, util.ErrTokenMismatch))
	_, err = tokens[1].IntVal()
	assert.True(t, errors.Is(err, util.ErrTokenMismatch))
	_, err = tokens[2].Symbol()
	assert.True(t, errors.Is(err, util.ErrTokenMismatch))
	_, err = tokens[3].Keyword()
	assert.True(t, errors.Is(err, util.ErrTokenMismatch))
	_, err = tokens[4].StringVal()
	assert.True(t, errors.Is(err, util.ErrTokenMismatch))
}

func TestTokenizer_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Err     error
	}{
		{Content: `"never closed`, Err: util.ErrUnexpectedToken},
		{Content: "\"spans\nlines\"", Err: util.ErrUnexpectedToken},
		{Content: "/* open", Err: util.ErrUnexpectedToken},
		{Content: `"hé"`, Err: util.ErrUnexpectedToken},
		{Content: "32768", Err: util.ErrOutOfRange},
		{Content: "99999999999999999999", Err: util.ErrOutOfRange},
	}
	for _, data := range testData {
		_, err := NewTokenizer([]byte(data.Content)).Advance(false)
		assert.True(t, errors.Is(err, data.Err), data.Content)
		kind, _ := util.KindOf(err)
		assert.Equal(t, util.SyntaxError, kind)
	}
}
