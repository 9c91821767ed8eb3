// jetpeg is a console utility to check grammar descriptions and match inputs against them.
// Usage is
//
//	jetpeg check [--print] [--no-optimize] <grammar_file>...
//	jetpeg layout -g <grammar_file> [<rule>...]
//	jetpeg match -g <grammar_file> [-r <rule>] [-e] [{-m | -s <prefix>}] [--eval] <input>...
//	jetpeg repl -g <grammar_file> [-r <rule>] [--eval]
//
// Several -g flags (or check arguments) are combined into a single grammar.
//
// match takes input file names or doublestar patterns (inputs/**/*.txt), "-" reads standard input.
// Files are matched concurrently, results are printed in input order.
// Flag -e means that inputs contain syntax errors, the program fails if an input matches.
// Flag -m treats every input file as multiple samples delimited by separators, the first line is the separator.
// Each separator line starts with the same sequence of non-spacing characters.
// The rest of the separator line (after one or more spacing chars) is ignored and may be used as a comment.
// Argument -s <prefix> treats an input file as multiple samples if it starts with the given prefix.
// The last LF character preceding a separator is not included in the sample.
// Flag --eval evaluates value code, objects are printed as {"<Class>": data}.
//
// Configuration is read from .jetpeg.yaml in the current or home directory (or the --config file)
// and from JETPEG_* environment variables, e.g. JETPEG_LOG_LEVEL=debug.
//
// The program returns following error codes:
//
//	1: wrong command line arguments or configuration
//	2: error reading a file
//	3: a file is not a valid UTF-8 encoded text
//	4: invalid grammar definition
//	5: error compiling a grammar
//	6: syntax error (or missing expected syntax error)
//
// Error messages are printed to STDERR.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	errUsage = iota + 1
	errFile
	errContent
	errGrammar
	errParser
	errSyntax
)

// exitError carries the exit code, err may be nil if everything is already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func fail(code int, e error) error {
	return &exitError{code, e}
}

func failf(code int, format string, args ...any) error {
	return &exitError{code, fmt.Errorf(format, args...)}
}

// NewCmd creates the root command.
func NewCmd() *cobra.Command {
	cfg := newConfig()
	root := &cobra.Command{
		Use:           "jetpeg",
		Short:         "Check PEG grammars and match inputs against them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.load(cmd)
		},
	}
	cfg.registerFlags(root)
	root.AddCommand(
		newCheckCmd(cfg),
		newLayoutCmd(cfg),
		newMatchCmd(cfg),
		newReplCmd(cfg),
	)
	return root
}

func main() {
	e := NewCmd().Execute()
	if e == nil {
		return
	}

	var ee *exitError
	if !errors.As(e, &ee) {
		ee = &exitError{errUsage, e}
	}
	if ee.err != nil {
		fmt.Fprintln(os.Stderr, ee.err.Error())
	}
	os.Exit(ee.code)
}
