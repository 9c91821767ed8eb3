package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Case is a golden match test: a grammar, a start rule, and inputs it must accept or reject.
type Case struct {
	Name     string    `yaml:"name"`
	Grammar  string    `yaml:"grammar"`
	Rule     string    `yaml:"rule"`
	Matches  []Match   `yaml:"matches"`
	Failures []Failure `yaml:"failures"`
}

// Match is an accepted input. Value is checked only if present.
type Match struct {
	Input string    `yaml:"input"`
	Value yaml.Node `yaml:"value"`
}

// Want returns the expected value, ok is false if the case does not specify one.
func (m *Match) Want(t testing.TB) (v any, ok bool) {
	t.Helper()
	if m.Value.Kind == 0 {
		return nil, false
	}
	require.NoError(t, m.Value.Decode(&v))
	return v, true
}

// Failure is a rejected input with the expected furthest failure.
type Failure struct {
	Input    string   `yaml:"input"`
	Pos      int      `yaml:"pos"`
	Expected []string `yaml:"expected"`
	Others   []string `yaml:"others"`
}

// LoadCorpus reads test cases from all YAML files matching pattern.
// A case without a rule name uses rule "test".
func LoadCorpus(t testing.TB, pattern string) []Case {
	t.Helper()
	files, e := filepath.Glob(pattern)
	require.NoError(t, e)
	require.NotEmpty(t, files, "no files match %s", pattern)

	var res []Case
	for _, name := range files {
		content, e := os.ReadFile(name)
		require.NoError(t, e)

		var cases []Case
		require.NoError(t, yaml.Unmarshal(content, &cases), name)
		for _, c := range cases {
			if c.Rule == "" {
				c.Rule = "test"
			}
			c.Name = filepath.Base(name) + "/" + c.Name
			res = append(res, c)
		}
	}
	return res
}
