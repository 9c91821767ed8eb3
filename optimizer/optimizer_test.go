package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/langdef"
)

func optimize(t *testing.T, src string) (*grammar.Grammar, *grammar.Grammar, int) {
	t.Helper()
	g, e := langdef.ParseString("test", src+" rule b 'b' end")
	require.NoError(t, e)
	res, count := Optimize(g)
	require.NoError(t, grammar.Check(res))
	return g, res, count
}

func TestFactoring(t *testing.T) {
	samples := []struct {
		src, expected string
		count         int
	}{
		{"'x' 'b' / 'x' 'c'", "%#0:'x' ((%#0 'b') / (%#0 'c'))", 1},
		{"x:b 'c' / x:b 'd' / b", "%#0:b ((x:%#0 'c') / (x:%#0 'd') / %#0)", 1},
		{"('x' <Foo> / 'x' <Bar>)", "(%#0:'x' ((%#0 <Foo>) / (%#0 <Bar>)))", 1},
		{"[a-z] 'x' / [a-z]", "%#0:[a-z] ((%#0 'x') / %#0)", 1},
		{"'x' / 'y'", "'x' / 'y'", 0},
		{"'x'* 'a' / 'x' 'b'", "('x'* 'a') / ('x' 'b')", 0},
		{"'x' 'a' / 'X'i 'b'", "('x' 'a') / ('X'i 'b')", 0},
		{"&'x' 'a' / 'x' 'b'", "(&'x' 'a') / ('x' 'b')", 0},
		{"'x'?", "'x' / ()", 0},
	}

	for _, sample := range samples {
		_, res, count := optimize(t, "rule a "+sample.src+" end")
		assert.Equal(t, sample.expected, grammar.Format(res.Rule("a").Body), sample.src)
		assert.Equal(t, sample.count, count, sample.src)
	}
}

func TestNestedFactoring(t *testing.T) {
	_, res, count := optimize(t, "rule a 'x' ('y' 'p' / 'y' 'q') / 'x' 'z' end")
	assert.Equal(t, 2, count)
	assert.Equal(t, "%#1:'x' ((%#1 (%#0:'y' ((%#0 'p') / (%#0 'q')))) / (%#1 'z'))",
		grammar.Format(res.Rule("a").Body))
}

func TestSourceUnchanged(t *testing.T) {
	g, res, _ := optimize(t, "rule a 'x' 'b' / 'x' 'c' end")
	assert.Equal(t, "('x' 'b') / ('x' 'c')", grammar.Format(g.Rule("a").Body))
	assert.NotSame(t, g.Rule("a"), res.Rule("a"))
	assert.Equal(t, g.Names(), res.Names())
}

func TestReplayScope(t *testing.T) {
	_, res, _ := optimize(t, "rule a %l:'x' $match[%l] / %l:'x' 'y' end")
	f, valid := res.Rule("a").Body.(*grammar.Factored)
	require.True(t, valid)

	var replays []*grammar.Replay
	grammar.Walk(f.Choice, func(e grammar.Expression) bool {
		if r, valid := e.(*grammar.Replay); valid {
			replays = append(replays, r)
		}
		return true
	})
	require.Len(t, replays, 2)

	b, found := grammar.Resolve(replays[0], f.Name)
	require.True(t, found)
	assert.Same(t, f, b.Factored)

	ref := f.Choice.Children[0].(*grammar.Sequence).Children[1].(*grammar.MatchFunction).Child
	b, found = grammar.Resolve(ref, "l")
	require.True(t, found)
	assert.Equal(t, 1, b.Slot)
}

func TestLeftmost(t *testing.T) {
	g, e := langdef.ParseString("test", "rule a (x:'q' 'r') <Foo> end rule b ('a'* 'b') end")
	require.NoError(t, e)
	assert.Equal(t, "'q'", grammar.Format(Leftmost(g.Rule("a").Body)))
	assert.Nil(t, Leftmost(g.Rule("b").Body))
}
