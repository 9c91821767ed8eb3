package lexer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/source"
)

var (
	tokenRe      = regexp.MustCompile(`(?s:[\s]+|(\d+)|([a-z_][a-z0-9_]*)|('.*?')|('.{0,10}))`)
	tokenTypes   = []TokenType{{1, "number"}, {2, "name"}, {3, "string"}, {ErrorTokenType, ""}}
	tokenSamples = []byte("123 foo 'bar'")
)

func TestEmpty(t *testing.T) {
	l := New(tokenRe, tokenTypes)
	for _, src := range []string{"", " ", "  ", " \t\r\n "} {
		tok, pos, e := l.Next(source.New("", []byte(src)), 0)
		require.NoError(t, e, "source %q", src)
		assert.Equal(t, EofTokenType, tok.Type(), "source %q", src)
		assert.Equal(t, EofTokenName, tok.TypeName(), "source %q", src)
		assert.Equal(t, len(src), pos)
	}
}

func TestTokenSamples(t *testing.T) {
	l := New(tokenRe, tokenTypes)
	src := source.New("", tokenSamples)
	pos := 0
	for _, tokType := range tokenTypes[:3] {
		var tok *Token
		var e error
		tok, pos, e = l.Next(src, pos)
		require.NoError(t, e)
		assert.Equal(t, tokType.TypeName, tok.TypeName())
		assert.Equal(t, tokType.Type, tok.Type())
	}

	tok, _, e := l.Next(src, pos)
	require.NoError(t, e)
	assert.Equal(t, EofTokenName, tok.TypeName())
}

func TestTokenPosition(t *testing.T) {
	l := New(tokenRe, tokenTypes)
	src := source.New("src", []byte("foo\n  bar"))
	_, pos, e := l.Next(src, 0)
	require.NoError(t, e)
	tok, pos, e := l.Next(src, pos)
	require.NoError(t, e)
	assert.Equal(t, "bar", tok.Text())
	assert.Equal(t, 6, tok.Offset())
	assert.Equal(t, 2, tok.Line())
	assert.Equal(t, 3, tok.Col())
	assert.Equal(t, "src", tok.SourceName())
	assert.Equal(t, 9, pos)
}

func TestBrokenToken(t *testing.T) {
	l := New(tokenRe, tokenTypes)
	tok, _, e := l.Next(source.New("", []byte("\n  '*  *")), 0)
	require.Nil(t, tok)

	var ee *jetpeg.Error
	require.True(t, errors.As(e, &ee))
	assert.Equal(t, BadTokenError, ee.Code)
	assert.Equal(t, 2, ee.Line)
	assert.Equal(t, 3, ee.Col)
	assert.Contains(t, ee.Message, `"'*  *"`)
}

func TestErrorPos(t *testing.T) {
	re := regexp.MustCompile(`(\s+)|(\w+)|(<\w+>)|(<.+)`)
	types := []TokenType{
		{0, "space"},
		{1, "word"},
		{2, "tag"},
		{ErrorTokenType, ""},
	}
	samples := []struct {
		src            string
		err, line, col int
	}{
		{"foo\n<bar> &baz", WrongCharError, 2, 7},
		{"foo\n <bar\nbaz", BadTokenError, 2, 2},
	}
	l := New(re, types)
	for i, s := range samples {
		src := source.New("src", []byte(s.src))
		tok, pos, e := l.Next(src, 0)
		for e == nil && tok.Type() != EofTokenType {
			tok, pos, e = l.Next(src, pos)
		}
		require.Error(t, e, "sample %d", i)

		var ee *jetpeg.Error
		require.True(t, errors.As(e, &ee), "sample %d", i)
		tail := fmt.Sprintf("line %d col %d", s.line, s.col)
		assert.Equal(t, s.err, ee.Code, "sample %d", i)
		assert.True(t, strings.HasSuffix(ee.Message, tail), "sample %d: %s", i, ee.Message)
	}
}
