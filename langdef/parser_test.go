package langdef

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/internal/test"
	"github.com/ava12/jetpeg/lexer"
)

func checkErrorCode(t *testing.T, samples []string, code int) {
	t.Helper()
	for index, src := range samples {
		_, e := ParseString("string", src)
		test.ExpectErrorCode(t, code, e, "input #"+strconv.Itoa(index))
	}
}

func TestUnexpectedEof(t *testing.T) {
	checkErrorCode(t, []string{
		"rule",
		"rule a",
		"rule a 'x'",
		"rule a ( 'x'",
		"rule a[%x, ",
		"rule a 'x' <Foo",
	}, UnexpectedEofError)
}

func TestUnexpectedToken(t *testing.T) {
	checkErrorCode(t, []string{
		"foo",
		"rule a 'x' ) end",
		"rule a[b] 'x' end",
		"rule a end end",
		"rule a 'x' <Foo> 'y' end",
		"rule a $error[%x] end",
		"rule a 'x' <Foo { a: 'x' 'y' }> end",
	}, UnexpectedTokenError)
}

func TestRuleDefined(t *testing.T) {
	checkErrorCode(t, []string{
		"rule a 'x' end rule a 'y' end",
	}, RuleDefinedError)
}

func TestInvalidName(t *testing.T) {
	checkErrorCode(t, []string{
		"rule end 'x' end",
		"rule a.b 'x' end",
		"rule a Foo.bar end",
	}, InvalidNameError)
}

func TestInvalidEscape(t *testing.T) {
	checkErrorCode(t, []string{
		`rule a '\q' end`,
		`rule a [\q] end`,
		`rule a "\x4" end`,
		`rule a '\uD800' end`,
	}, InvalidEscapeError)
}

func TestInvalidRange(t *testing.T) {
	checkErrorCode(t, []string{
		"rule a [z-a] end",
	}, InvalidRangeError)
}

func TestUnknownFunction(t *testing.T) {
	checkErrorCode(t, []string{
		"rule a $foo end",
		"rule a 'x' <Foo $bar> end",
	}, UnknownFunctionError)
}

func TestMisplacedLabel(t *testing.T) {
	checkErrorCode(t, []string{
		"rule a :'x' end",
	}, MisplacedLabelError)
}

func TestUnterminatedCode(t *testing.T) {
	checkErrorCode(t, []string{
		"rule a 'x' { foo end",
		"rule a 'x' { '}' end",
	}, UnterminatedCodeError)
}

func TestLexicalErrors(t *testing.T) {
	checkErrorCode(t, []string{"rule a 'x end"}, lexer.BadTokenError)
	checkErrorCode(t, []string{"rule a ~ end"}, lexer.WrongCharError)
}

func TestCheckErrors(t *testing.T) {
	checkErrorCode(t, []string{"", "# nothing here\n"}, grammar.EmptyGrammarError)
	checkErrorCode(t, []string{"rule a b end"}, grammar.UndefinedRuleError)
	checkErrorCode(t, []string{
		"rule a b['x'] end rule b 'y' end",
		"rule a b end rule b[%x] %x end",
	}, grammar.ArgumentCountError)
	checkErrorCode(t, []string{"rule a[%x, %x] %x end"}, grammar.DuplicateParamError)
	checkErrorCode(t, []string{
		"rule a %x end",
		"rule a ('x' / %y:'y') %y end",
	}, grammar.UnresolvedLocalError)
	checkErrorCode(t, []string{
		"rule a b 'x' end rule b a 'y' / 'z' end",
	}, grammar.IndirectRecursionError)
}

func TestErrorPosition(t *testing.T) {
	_, e := ParseString("test.jpeg", "rule a\n  b end")
	var je *jetpeg.Error
	require.ErrorAs(t, e, &je)
	assert.Equal(t, grammar.UndefinedRuleError, je.Code)
	assert.Equal(t, "test.jpeg", je.SourceName)
	assert.Equal(t, 2, je.Line)
	assert.Equal(t, 3, je.Col)
	assert.Equal(t, "a", je.Rule)
}

func TestFormatRoundTrip(t *testing.T) {
	samples := []struct{ src, expected string }{
		{"'a' / 'b'", "'a' / 'b'"},
		{"/ 'a' / 'b'", "'a' / 'b'"},
		{"x:'a'* y:[a-z0-9]+", "x:'a'* y:[a-z0-9]+"},
		{"'a'?", "'a' / ()"},
		{"'ab'i 'c'", "'ab'i 'c'"},
		{"item+[',']", "item+[',']"},
		{"item*[(',' / ';')]", "item*[(',' / ';')]"},
		{". *-> 'x'", ".*->'x'"},
		{"!'a' &.", "!'a' &."},
		{":item", "item:item"},
		{"'x' @:item 'y'", "'x' @:item 'y'"},
		{"%c:item $match[%c]", "%c:item $match[%c]"},
		{"$match['lit']", "$match['lit']"},
		{"$enter_mode['m', 'a' $in_mode['m']] $leave_mode['m', item]", "$enter_mode['m', 'a' $in_mode['m']] $leave_mode['m', item]"},
		{"$error['oops'] / $true / $false", "$error['oops'] / $true / $false"},
		{"( )", "()"},
		{`"\x41\n" [\]\-^]`, `'A\n' [\]\-\^]`},
		{"[^\\x00-\\x1f]", "[^\\x00-\\x1f]"},
		{"a:'x' <Foo { k: @a, l: ['s', $true], m: <Bar.Baz 'q'> }>", "a:'x' <Foo { k: @a, l: ['s', $true], m: <Bar.Baz 'q'> }>"},
		{"'x' <Foo> / 'y'", "('x' <Foo>) / 'y'"},
	}

	for _, sample := range samples {
		g, e := ParseString("sample", "rule test "+sample.src+" end rule item 'i' end")
		require.NoError(t, e, sample.src)
		assert.Equal(t, sample.expected, grammar.Format(g.Rule("test").Body), sample.src)
	}
}

func TestParams(t *testing.T) {
	g, e := ParseString("params", "rule test[%x, %y] %x $match[%y] end rule call test['a', 'b'] end")
	require.NoError(t, e)
	assert.Equal(t, []string{"test", "call"}, g.Names())
	assert.Equal(t, []string{"x", "y"}, g.Rule("test").Params)
	assert.Equal(t, "rule test[%x, %y]\n  %x $match[%y]\nend\n", grammar.FormatRule(g.Rule("test")))
	assert.Equal(t, "test['a', 'b']", grammar.Format(g.Rule("call").Body))
}

func TestValueCreator(t *testing.T) {
	g, e := ParseString("code.jpeg", "rule test\n  v:'x' { return \"}\" + {a: 1}.a; }\nend")
	require.NoError(t, e)
	vc, valid := g.Rule("test").Body.(*grammar.ValueCreator)
	require.True(t, valid)
	assert.Equal(t, `return "}" + {a: 1}.a;`, vc.Code)
	assert.Equal(t, "code.jpeg", vc.Filename)
	assert.Equal(t, 2, vc.Line)
	assert.IsType(t, &grammar.Label{}, vc.Child)
}

func TestValueCreatorLine(t *testing.T) {
	g, e := ParseString("code.jpeg", "rule test\n  v:'x' {\n\n    v + 1\n  }\nend")
	require.NoError(t, e)
	vc := g.Rule("test").Body.(*grammar.ValueCreator)
	assert.Equal(t, "v + 1", vc.Code)
	assert.Equal(t, 4, vc.Line)
}

func TestStringEscapes(t *testing.T) {
	g, e := ParseString("escapes", `rule test 'it\'s' "é\t\\" end`)
	require.NoError(t, e)
	seq := g.Rule("test").Body.(*grammar.Sequence)
	assert.Equal(t, []byte("it's"), seq.Children[0].(*grammar.StringTerminal).Chars)
	assert.Equal(t, []byte("é\t\\"), seq.Children[1].(*grammar.StringTerminal).Chars)
}

func TestComments(t *testing.T) {
	g, e := ParseString("comments", "# leading\nrule test # trailing\n  'a' # item\n  / 'b'\nend\n")
	require.NoError(t, e)
	assert.Equal(t, "'a' / 'b'", grammar.Format(g.Rule("test").Body))
}
