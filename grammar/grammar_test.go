package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/internal/test"
	"github.com/ava12/jetpeg/langdef"
)

func parse(t *testing.T, src string) *grammar.Grammar {
	t.Helper()
	g, e := langdef.ParseString("test", src)
	require.NoError(t, e)
	return g
}

func findAll[T grammar.Expression](e grammar.Expression) []T {
	var res []T
	grammar.Walk(e, func(x grammar.Expression) bool {
		if n, valid := x.(T); valid {
			res = append(res, n)
		}
		return true
	})
	return res
}

func TestEqual(t *testing.T) {
	g := parse(t, `
rule a x:'a' [0-9]+ / %l:b $match[%l] end
rule b 'a' x:[0-9]+ / %l:b $match[%l] end
rule c x:'a' [0-9]* / %l:b $match[%l] end
rule d x:'a' [0-9]+ / %l:b $match[%l] end
`)
	assert.True(t, grammar.Equal(g.Rule("a").Body, g.Rule("d").Body))
	assert.False(t, grammar.Equal(g.Rule("a").Body, g.Rule("b").Body))
	assert.False(t, grammar.Equal(g.Rule("a").Body, g.Rule("c").Body))
	assert.False(t, grammar.Equal(g.Rule("a").Body, nil))
	assert.True(t, grammar.Equal(nil, nil))
}

func TestClone(t *testing.T) {
	g := parse(t, "rule a x:'a'* <Foo { k: @x }> / $enter_mode['m', %p:. $match[%p]] end")
	body := g.Rule("a").Body
	clone := grammar.Clone(body)
	grammar.Link(clone)

	assert.True(t, grammar.Equal(body, clone))
	assert.Equal(t, grammar.Format(body), grammar.Format(clone))

	original := findAll[*grammar.StringTerminal](body)[0]
	copied := findAll[*grammar.StringTerminal](clone)[0]
	assert.NotSame(t, original, copied)
	assert.Equal(t, original.Pos(), copied.Pos())
	copied.Chars[0] = 'b'
	assert.Equal(t, []byte("a"), original.Chars)
}

func TestWalkHelpers(t *testing.T) {
	g := parse(t, "rule a 'x' ('y' / 'z') end")
	r := g.Rule("a")
	terms := findAll[*grammar.StringTerminal](r)
	require.Len(t, terms, 3)

	assert.Equal(t, 0, grammar.SiblingIndex(terms[0]))
	assert.Equal(t, 1, grammar.SiblingIndex(terms[2]))
	assert.Equal(t, -1, grammar.SiblingIndex(r))
	assert.Equal(t, 2, grammar.NodeLevel(terms[0]))
	assert.Equal(t, 4, grammar.NodeLevel(terms[1]))
	assert.Same(t, r, grammar.Ancestor(terms[0], 1))
	assert.Same(t, r, grammar.RuleOf(terms[2]))
}

func TestResolve(t *testing.T) {
	g := parse(t, "rule a[%p] %x:'x' ('y' %z:'z' $match[%z]) $match[%x] $match[%p] end")
	refs := findAll[*grammar.LocalValueRef](g.Rule("a"))
	require.Len(t, refs, 3)

	b, found := grammar.Resolve(refs[0], "z")
	require.True(t, found)
	assert.Equal(t, grammar.LabelBinding, b.Kind)
	assert.Equal(t, 2, b.Slot)
	assert.Equal(t, 3, grammar.LocalDepth(refs[0]))

	b, found = grammar.Resolve(refs[1], "x")
	require.True(t, found)
	assert.Equal(t, 1, b.Slot)
	assert.Equal(t, 2, grammar.LocalDepth(refs[1]))

	b, found = grammar.Resolve(refs[2], "p")
	require.True(t, found)
	assert.Equal(t, grammar.ParamBinding, b.Kind)
	assert.Equal(t, 0, b.Slot)

	_, found = grammar.Resolve(refs[1], "z")
	assert.False(t, found)
}

func TestFactoredScope(t *testing.T) {
	primary := &grammar.RuleCall{Name: "b"}
	replay := &grammar.Replay{Name: "f0"}
	f := &grammar.Factored{
		Name:    "f0",
		Primary: primary,
		Choice: &grammar.Choice{Children: []grammar.Expression{
			&grammar.Sequence{Children: []grammar.Expression{replay, &grammar.StringTerminal{Chars: []byte("x")}}},
			&grammar.RuleCall{Name: "b"},
		}},
	}
	g := grammar.New()
	require.True(t, g.Add(&grammar.Rule{Name: "a", Body: f}))
	require.True(t, g.Add(&grammar.Rule{Name: "b", Body: &grammar.AnyCharacter{}}))
	require.False(t, g.Add(&grammar.Rule{Name: "b", Body: &grammar.AnyCharacter{}}))

	b, found := grammar.Resolve(replay, "f0")
	require.True(t, found)
	assert.Equal(t, grammar.FactoredBinding, b.Kind)
	assert.Same(t, f, b.Factored)
	assert.Equal(t, 0, b.Slot)
	assert.Equal(t, 1, grammar.LocalDepth(replay))

	_, found = grammar.Resolve(primary, "f0")
	assert.False(t, found)
	assert.NoError(t, grammar.Check(g))
}

func TestAnalysis(t *testing.T) {
	g := parse(t, `
rule expr expr '+' term / term end
rule term opt term '*' atom / atom end
rule opt ' '* end
rule atom [0-9]+ / '(' expr ')' end
rule until .*->'x' end
rule look &'a' 'a' end
`)
	a := grammar.Analyze(g)
	assert.True(t, a.IsNullable("opt"))
	assert.False(t, a.IsNullable("expr"))
	assert.False(t, a.IsNullable("until"))
	assert.False(t, a.IsNullable("look"))

	assert.True(t, a.IsDirectlyLeftRecursive("expr"))
	assert.True(t, a.IsDirectlyLeftRecursive("term"))
	assert.False(t, a.IsDirectlyLeftRecursive("atom"))
	assert.Equal(t, []string{"term", "opt", "atom"}, a.LeftCalls("term"))
	assert.Equal(t, []string{"expr", "term"}, a.LeftCalls("expr"))
	assert.Empty(t, a.IndirectLeftRecursion())
}

func TestIndirectLeftRecursion(t *testing.T) {
	g := grammar.New()
	g.Add(&grammar.Rule{Name: "a", Body: &grammar.Sequence{Children: []grammar.Expression{
		&grammar.Repetition{Child: &grammar.StringTerminal{Chars: []byte(" ")}},
		&grammar.RuleCall{Name: "b"},
	}}})
	g.Add(&grammar.Rule{Name: "b", Body: &grammar.Choice{Children: []grammar.Expression{
		&grammar.RuleCall{Name: "a"},
		&grammar.StringTerminal{Chars: []byte("b")},
	}}})
	g.Add(&grammar.Rule{Name: "c", Body: &grammar.RuleCall{Name: "a"}})

	assert.Equal(t, []string{"a", "b"}, grammar.Analyze(g).IndirectLeftRecursion())
	test.ExpectErrorCode(t, grammar.IndirectRecursionError, grammar.Check(g))
}

func TestMisplacedDataRef(t *testing.T) {
	g := grammar.New()
	g.Add(&grammar.Rule{Name: "a", Body: &grammar.MatchFunction{Child: &grammar.LabelDataRef{Name: "x"}}})
	test.ExpectErrorCode(t, grammar.MisplacedDataRefError, grammar.Check(g))
}

func TestSelectionText(t *testing.T) {
	assert.Equal(t, "b", grammar.Selection{From: 'b', To: 'b'}.String())
	assert.Equal(t, "2-5", grammar.Selection{From: '2', To: '5'}.String())
	assert.Equal(t, `\]`, grammar.FormatSelection(grammar.Selection{From: ']', To: ']'}))
	assert.Equal(t, "'it\\'s\\n'", grammar.QuoteString("it's\n"))
}
