package failure

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg/source"
)

func TestTrackerFurthest(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, -1, tr.Pos())

	tr.Expect(0, "a")
	tr.Expect(2, "c")
	tr.Expect(2, "b")
	tr.Other(2, "oops")
	tr.Expect(1, "ignored")
	tr.Expect(2, "b")

	assert.Equal(t, 2, tr.Pos())
	assert.Equal(t, []string{"b", "c"}, tr.Expectations())
	assert.Equal(t, []string{"oops"}, tr.Others())

	tr.AddFailure(3, "z", false)
	assert.Equal(t, 3, tr.Pos())
	assert.Empty(t, tr.Expectations())
	assert.Equal(t, []string{"z"}, tr.Others())
}

func TestParsingError(t *testing.T) {
	src := source.New("input.txt", []byte("first line\nsecond li"))
	tr := NewTracker()
	tr.Expect(18, "x")
	tr.Expect(18, "2-5")
	tr.Other(18, "custom")

	e := tr.Error(src)
	assert.Equal(t, 18, e.Pos)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 8, e.Col)
	assert.Equal(t, "input.txt", e.SourceName)
	assert.Equal(t, "first line\nsecond ", e.After)
	assert.Equal(t, "custom / expected one of 2-5, x", e.Reason())
	assert.Equal(t, `at line 2, column 8 (byte 18, after "first line\nsecond "): custom / expected one of 2-5, x`, e.Error())

	je := e.AsError()
	assert.Equal(t, MatchError, je.Code)
	assert.Equal(t, 2, je.Line)
}

func TestParsingErrorContext(t *testing.T) {
	input := []byte("0123456789abcdefghijKLMNOP")
	tr := NewTracker()
	tr.Expect(len(input), EndOfInput)
	e := tr.Error(source.New("", input))
	require.Len(t, e.After, 20)
	assert.Equal(t, "6789abcdefghijKLMNOP", e.After)
	assert.Equal(t, []string{EndOfInput}, e.Expectations)
}

func TestParsingErrorContextRuneBoundary(t *testing.T) {
	input := []byte("x" + strings.Repeat("ж", 10) + "a")
	tr := NewTracker()
	tr.Expect(len(input), EndOfInput)
	e := tr.Error(source.New("", input))
	assert.True(t, utf8.ValidString(e.After))
	assert.Equal(t, strings.Repeat("ж", 9)+"a", e.After)
}

func TestEmptyTracker(t *testing.T) {
	e := NewTracker().Error(source.New("", []byte("abc")))
	assert.Equal(t, 0, e.Pos)
	assert.Equal(t, "no match", e.Reason())
}

func TestDisplayColumn(t *testing.T) {
	src := source.New("", []byte("日本x"))
	tr := NewTracker()
	tr.Expect(6, "y")
	e := tr.Error(src)
	assert.Equal(t, 3, e.Col)
	assert.Equal(t, 5, e.DisplayCol)
}
