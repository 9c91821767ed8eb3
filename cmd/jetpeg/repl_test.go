package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg/langdef"
	"github.com/ava12/jetpeg/parser"
)

type script struct {
	lines   []string
	prompts []string
	history []string
}

func (s *script) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", liner.ErrPromptAborted
	}
	return line, nil
}

func (s *script) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func newSession(t *testing.T, src string) (*session, *bytes.Buffer) {
	t.Helper()
	g, e := langdef.ParseString("test.jpeg", src)
	require.NoError(t, e)
	p, e := parser.New(g)
	require.NoError(t, e)
	out := &bytes.Buffer{}
	return &session{p: p, rule: p.Rules()[0], out: out, format: formatYAML}, out
}

func TestSession(t *testing.T) {
	s, out := newSession(t, "rule test '(' @:[a-z\\n]* ')' end rule word @:[a-z]+ end")
	s.format = formatJSON
	term := &script{lines: []string{
		"(ab)",
		"(cd",
		"",
		"(",
		"ef)",
		"",
		":rule word",
		"xyz",
		":rule",
		":rule foo",
		":bar",
		"exit",
		"never",
	}}

	require.NoError(t, s.run(context.Background(), term))
	assert.Equal(t, "\"ab\"\n"+
		"  *** error: at line 1, column 4 (byte 3, after \"(cd\"): expected one of \n, ), a-z\n"+
		"\"\\nef\"\n"+
		"\"xyz\"\n"+
		"word\n"+
		"unknown rule: foo\n"+
		"unknown command: \":bar\"\n",
		out.String())
	assert.Equal(t, []string{ps1, ps1, ps2, ps1, ps2, ps1, ps1, ps1, ps1, ps1, ps1, ps1}, term.prompts)
	assert.Equal(t, []string{"(ab)", "(cd", "(", "ef)", ":rule word", "xyz", ":rule", ":rule foo", ":bar", "exit"}, term.history)
	assert.Equal(t, []string{"never"}, term.lines)
}

func TestSessionAbortAndEOF(t *testing.T) {
	s, out := newSession(t, "rule test 'a' 'b' end")
	term := &script{lines: []string{"a", "^C", "ab"}}

	require.NoError(t, s.run(context.Background(), term))
	assert.Equal(t, "{}\n\n", out.String())
	assert.Equal(t, []string{ps1, ps2, ps1, ps1}, term.prompts)
}

func TestSessionCommands(t *testing.T) {
	s, out := newSession(t, "rule test k:[a-z] '=' v:[a-z] end rule other 'x' end")
	term := &script{lines: []string{":rules", ":layout", "help", ":quit"}}

	require.NoError(t, s.run(context.Background(), term))
	assert.Equal(t, "test other\ntest: {k: range, v: range}\n"+replHelp, out.String())
}

func TestSessionCanceled(t *testing.T) {
	s, _ := newSession(t, "rule test 'a' end")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.run(ctx, &script{}), context.Canceled)
}
