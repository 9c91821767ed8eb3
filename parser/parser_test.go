package parser_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg/failure"
	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/internal/test"
	"github.com/ava12/jetpeg/langdef"
	"github.com/ava12/jetpeg/layout"
	"github.com/ava12/jetpeg/output"
	"github.com/ava12/jetpeg/parser"
	"github.com/ava12/jetpeg/source"
)

func compile(t *testing.T, src string, opts ...parser.Option) *parser.Parser {
	t.Helper()
	g, e := langdef.ParseString("test.jpeg", src)
	require.NoError(t, e)
	p, e := parser.New(g, opts...)
	require.NoError(t, e)
	return p
}

// plain converts a built value to the form used in test corpora:
// input ranges become strings, objects and values become single-field records.
func plain(v any) any {
	switch x := output.Simplify(v).(type) {
	case output.Record:
		res := make(map[string]any, len(x))
		for k, field := range x {
			res[k] = plain(field)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i, item := range x {
			res[i] = plain(item)
		}
		return res
	case *output.Object:
		return map[string]any{"<" + x.Class + ">": plain(x.Data)}
	case *output.Value:
		return map[string]any{"{" + x.Code + "}": plain(x.Data)}
	default:
		return x
	}
}

func parsingError(t *testing.T, e error) *failure.ParsingError {
	t.Helper()
	var pe *failure.ParsingError
	require.ErrorAs(t, e, &pe)
	return pe
}

func TestCorpus(t *testing.T) {
	variants := []struct {
		name string
		opts []parser.Option
	}{
		{"optimized", nil},
		{"plain", []parser.Option{parser.WithoutOptimizer()}},
	}

	for _, c := range test.LoadCorpus(t, "testdata/*.yaml") {
		for _, v := range variants {
			t.Run(c.Name+"/"+v.name, func(t *testing.T) {
				p := compile(t, c.Grammar, v.opts...)

				for _, m := range c.Matches {
					res, e := p.Match(c.Rule, m.Input)
					require.NoError(t, e, "input %q", m.Input)
					if want, ok := m.Want(t); ok {
						if diff := cmp.Diff(want, plain(res)); diff != "" {
							t.Errorf("input %q: value mismatch (-want +got):\n%s", m.Input, diff)
						}
					}
				}

				for _, f := range c.Failures {
					_, e := p.Match(c.Rule, f.Input)
					require.Error(t, e, "input %q", f.Input)
					pe := parsingError(t, e)
					assert.Equal(t, f.Pos, pe.Pos, "input %q: %s", f.Input, pe)
					assert.Empty(t, cmp.Diff(f.Expected, pe.Expectations, cmpopts.EquateEmpty()), "input %q", f.Input)
					assert.Empty(t, cmp.Diff(f.Others, pe.Others, cmpopts.EquateEmpty()), "input %q", f.Input)
				}
			})
		}
	}
}

func TestCompilationErrors(t *testing.T) {
	samples := []struct {
		src  string
		code int
	}{
		{"rule test char:'a' 'b' char:'c' end", layout.DuplicateFieldError},
		{"rule test @:'a' x:'b' end", layout.AtLabelError},
		{"rule test a[x:'b'] end rule a[%p] %p end", layout.ArgumentTypeError},
		{"rule test b end", grammar.UndefinedRuleError},
	}

	for i, s := range samples {
		g, e := langdef.ParseString("test.jpeg", s.src)
		if e == nil {
			_, e = parser.New(g)
		}
		test.ExpectErrorCode(t, s.code, e, "sample #"+strconv.Itoa(i))
	}
}

func TestTooManyModes(t *testing.T) {
	sb := &strings.Builder{}
	sb.WriteString("rule test ")
	for i := 0; i <= parser.MaxModes; i++ {
		if i > 0 {
			sb.WriteString(" / ")
		}
		fmt.Fprintf(sb, "$in_mode['m%d']", i)
	}
	sb.WriteString(" end")

	g, e := langdef.ParseString("modes", sb.String())
	require.NoError(t, e)
	_, e = parser.New(g)
	test.ExpectErrorCode(t, parser.TooManyModesError, e)
}

func TestArgumentErrors(t *testing.T) {
	p := compile(t, "rule test 'a' end")

	_, e := p.Match("foo", "a")
	test.ExpectErrorCode(t, parser.UnknownRuleError, e)

	_, e = p.Match("test", 42)
	test.ExpectErrorCode(t, parser.InputTypeError, e)

	_, e = p.Match("test", iotest.ErrReader(errors.New("broken")))
	test.ExpectErrorCode(t, parser.InputReadError, e)

	_, e = p.MatchAll(context.Background(), "foo", nil)
	test.ExpectErrorCode(t, parser.UnknownRuleError, e)
}

func TestInputKinds(t *testing.T) {
	p := compile(t, "rule test @:[a-z]+ end")
	inputs := []any{
		"abc",
		[]byte("abc"),
		strings.NewReader("abc"),
		source.New("input", []byte("abc")),
	}
	for _, input := range inputs {
		res, e := p.Match("test", input)
		require.NoError(t, e, "%T", input)
		assert.Equal(t, "abc", plain(res), "%T", input)
	}
}

func TestParsingErrorPosition(t *testing.T) {
	p := compile(t, "rule test ('a' '\\n')* 'b' end")
	_, e := p.Match("test", source.New("input.txt", []byte("a\na\nc")))
	pe := parsingError(t, e)
	assert.Equal(t, 4, pe.Pos)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, 1, pe.Col)
	assert.Equal(t, "input.txt", pe.SourceName)
	assert.Equal(t, []string{"a", "b"}, pe.Expectations)
	assert.Equal(t, `at line 3, column 1 (byte 4, after "a\na\n"): expected one of a, b`, pe.Error())

	je := pe.AsError()
	assert.Equal(t, failure.MatchError, je.Code)
	assert.Equal(t, 3, je.Line)
}

func TestRun(t *testing.T) {
	p := compile(t, "rule test k:[a-z] '=' v:[0-9] end")
	src := source.New("", []byte("a=1"))
	b := output.NewBuilder(src.Content())
	require.NoError(t, p.Run("test", src, b))
	assert.Equal(t, map[string]any{"k": "a", "v": "1"}, plain(b.Result()))
}

func TestRecompiledGrammarsAgree(t *testing.T) {
	src := "rule test l:test '+' r:[0-9] / @:[0-9] end"
	inputs := []string{"1", "1+2", "1+2+3", "", "1+", "+1", "12"}
	p1 := compile(t, src)
	p2 := compile(t, src)
	for _, input := range inputs {
		v1, e1 := p1.Match("test", input)
		v2, e2 := p2.Match("test", input)
		assert.Equal(t, e1 == nil, e2 == nil, "input %q", input)
		assert.Empty(t, cmp.Diff(plain(v1), plain(v2)), "input %q", input)
		if e1 != nil && e2 != nil {
			assert.Equal(t, e1.Error(), e2.Error(), "input %q", input)
		}
	}
}

func TestOptimizer(t *testing.T) {
	src := "rule test 'a' 'b' / 'a' 'c' end"

	p := compile(t, src)
	_, factored := p.Grammar().Rule("test").Body.(*grammar.Factored)
	assert.True(t, factored)

	p = compile(t, src, parser.WithoutOptimizer())
	_, factored = p.Grammar().Rule("test").Body.(*grammar.Factored)
	assert.False(t, factored)
}

func TestLayoutAndRules(t *testing.T) {
	p := compile(t, "rule test k:[a-z] '=' v:[0-9] end rule other 'x' end")
	assert.Equal(t, []string{"test", "other"}, p.Rules())
	assert.Equal(t, "{k: range, v: range}", p.Layout("test").String())
	assert.Equal(t, "nothing", p.Layout("other").String())
	assert.Nil(t, p.Layout("foo"))
}

func TestMatchAll(t *testing.T) {
	p := compile(t, "rule test l:test '+' r:[0-9]+ / @:[0-9]+ end", parser.WithConcurrency(4))

	var inputs []*source.Source
	for i := 0; i < 100; i++ {
		text := strconv.Itoa(i)
		if i%3 == 0 {
			text += "+"
		} else {
			text += "+1+22"
		}
		inputs = append(inputs, source.New("input"+strconv.Itoa(i), []byte(text)))
	}

	res, e := p.MatchAll(context.Background(), "test", inputs)
	require.NoError(t, e)
	require.Len(t, res, len(inputs))
	for i, r := range res {
		if i%3 == 0 {
			pe := parsingError(t, r.Err)
			assert.Equal(t, len(strconv.Itoa(i))+1, pe.Pos)
			assert.Equal(t, "input"+strconv.Itoa(i), pe.SourceName)
			continue
		}

		require.NoError(t, r.Err)
		want := map[string]any{"l": map[string]any{"l": strconv.Itoa(i), "r": "1"}, "r": "22"}
		assert.Equal(t, want, plain(r.Value))
	}
}

func TestMatchAllSharedSource(t *testing.T) {
	p := compile(t, "rule test ('a' '\\n')* 'b' end", parser.WithConcurrency(8))
	src := source.New("shared", []byte("a\na\nc"))
	inputs := make([]*source.Source, 64)
	for i := range inputs {
		inputs[i] = src
	}

	res, e := p.MatchAll(context.Background(), "test", inputs)
	require.NoError(t, e)
	for _, r := range res {
		pe := parsingError(t, r.Err)
		assert.Equal(t, 4, pe.Pos)
		assert.Equal(t, 3, pe.Line)
		assert.Equal(t, 1, pe.Col)
	}
}

func TestMatchAllCanceled(t *testing.T) {
	p := compile(t, "rule test 'a' end")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, e := p.MatchAll(ctx, "test", []*source.Source{source.New("", []byte("a"))})
	assert.ErrorIs(t, e, context.Canceled)
}

func TestConcurrentMatches(t *testing.T) {
	p := compile(t, "rule test items:(v:[a-z]+)*[','] end")
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				res, e := p.Match("test", "ab,cd,ef")
				if !assert.NoError(t, e) {
					return
				}
				items := plain(res).(map[string]any)["items"].([]any)
				assert.Len(t, items, 3)
			}
		}()
	}
	wg.Wait()
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := compile(t, "rule test 'a' end", parser.WithMetrics(reg))
	_, e := p.Match("test", "a")
	require.NoError(t, e)
	_, e = p.Match("test", "b")
	require.Error(t, e)

	// a second parser shares the registered metrics
	p2 := compile(t, "rule test 'b' end", parser.WithMetrics(reg))
	_, e = p2.Match("test", "b")
	require.NoError(t, e)

	count, e := testutil.GatherAndCount(reg, "jetpeg_matches_total")
	require.NoError(t, e)
	assert.Equal(t, 2, count)

	expected := `
# HELP jetpeg_traced_passes_total Number of traced passes run to diagnose failed matches.
# TYPE jetpeg_traced_passes_total counter
jetpeg_traced_passes_total{rule="test"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "jetpeg_traced_passes_total"))
}

func TestLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "jetpeg",
		Level:  hclog.Trace,
		Output: buf,
	})
	p := compile(t, "rule test 'a' item end rule item 'b' end", parser.WithLogger(log))
	assert.Contains(t, buf.String(), "grammar compiled")

	buf.Reset()
	_, e := p.Match("test", "ab")
	require.NoError(t, e)
	assert.NotContains(t, buf.String(), "enter")

	_, e = p.Match("test", "ac")
	require.Error(t, e)
	out := buf.String()
	assert.Contains(t, out, "jetpeg.trace: enter: rule=test")
	assert.Contains(t, out, "jetpeg.trace: leave: rule=item")
	assert.Contains(t, out, "match failed")
}
