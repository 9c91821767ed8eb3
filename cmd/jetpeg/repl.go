package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ava12/jetpeg/failure"
	"github.com/ava12/jetpeg/parser"
	"github.com/ava12/jetpeg/realize"
)

const (
	ps1 = "jetpeg> "
	ps2 = "...     "
)

const replHelp = `Type an input to match it against the current rule.
An input ending where more text is expected continues on the next line,
an empty line matches what is typed so far.
	:rule <name>  switch to another rule
	:rules        list grammar rules
	:layout       show the value type of the current rule
	help          this help
	exit          leave
`

// prompter is the part of liner.State used by a session.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type session struct {
	p      *parser.Parser
	rule   string
	r      *realize.Realizer
	out    io.Writer
	format string
}

func newReplCmd(cfg *config) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "repl -g <grammar_file>",
		Short: "Match inputs typed in an interactive session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, stop, e := cfg.serveMetrics()
			if e != nil {
				return e
			}
			defer stop()

			p, e := cfg.compile(&opts.grammarOptions, reg)
			if e != nil {
				return e
			}
			rule, e := pickRule(p, opts.rule)
			if e != nil {
				return e
			}

			s := &session{p: p, rule: rule, out: cmd.OutOrStdout(), format: cfg.format()}
			if opts.eval {
				s.r = newRealizer(cfg)
			}

			history := cfg.v.GetString(keyHistoryFile)
			term, e := terminal(history)
			if e != nil && !os.IsNotExist(e) {
				cfg.log.Warn("cannot read history", "file", history, "error", e)
			}
			defer func() {
				if e := persist(term, history); e != nil {
					cfg.log.Warn("cannot save history", "error", e)
				}
			}()

			ctx, cancel := cfg.context()
			defer cancel()
			return s.run(ctx, term)
		},
	}
	opts.register(cmd, true)
	registerMatchFlags(cmd, &opts)
	return cmd
}

func (s *session) run(ctx context.Context, term prompter) error {
	var pending []string
	for {
		if e := ctx.Err(); e != nil {
			return e
		}

		prompt := ps1
		if len(pending) != 0 {
			prompt = ps2
		}
		line, e := term.Prompt(prompt)
		if e != nil {
			if e == io.EOF {
				fmt.Fprintln(s.out)
				return nil
			}
			if e == liner.ErrPromptAborted {
				pending = nil
				continue
			}
			return e
		}

		force := false
		if len(pending) == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			term.AppendHistory(line)
			if trimmed == "help" || trimmed == "exit" || trimmed[0] == ':' {
				if s.command(trimmed) {
					return nil
				}
				continue
			}
		} else if line == "" {
			force = true
		} else {
			term.AppendHistory(line)
		}

		if !force {
			pending = append(pending, line)
		}
		input := strings.Join(pending, "\n")
		v, e := s.p.Match(s.rule, input)
		var pe *failure.ParsingError
		if e != nil && !force && errors.As(e, &pe) && pe.Pos == len(input) {
			continue
		}

		pending = nil
		s.show(ctx, v, e)
	}
}

// command runs a session command and reports whether the session is over.
func (s *session) command(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "exit", ":quit":
		return true

	case "help", ":help":
		fmt.Fprint(s.out, replHelp)

	case ":rule":
		if arg == "" {
			fmt.Fprintln(s.out, s.rule)
		} else if s.p.Layout(arg) == nil {
			fmt.Fprintf(s.out, "unknown rule: %s\n", arg)
		} else {
			s.rule = arg
		}

	case ":rules":
		fmt.Fprintln(s.out, strings.Join(s.p.Rules(), " "))

	case ":layout":
		fmt.Fprintf(s.out, "%s: %s\n", s.rule, s.p.Layout(s.rule))

	default:
		fmt.Fprintf(s.out, "unknown command: %q\n", cmd)
	}
	return false
}

func (s *session) show(ctx context.Context, v any, e error) {
	if e == nil {
		v, e = result(ctx, s.r, v)
	}
	if e == nil {
		e = printValue(s.out, s.format, v)
	}
	if e != nil {
		reportError(s.out, e)
	}
}

func terminal(path string) (*liner.State, error) {
	term := liner.NewLiner()
	term.SetCtrlCAborts(true)
	if path == "" {
		return term, nil
	}

	f, e := os.Open(path)
	if e != nil {
		return term, e
	}
	defer f.Close()
	_, e = term.ReadHistory(f)
	return term, e
}

func persist(term *liner.State, path string) error {
	if path == "" {
		return term.Close()
	}

	f, e := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o666)
	if e != nil {
		term.Close()
		return fmt.Errorf("could not open %q to append history: %w", path, e)
	}
	defer f.Close()
	_, e = term.WriteHistory(f)
	if e != nil {
		term.Close()
		return fmt.Errorf("could not write history to %q: %w", path, e)
	}
	return term.Close()
}
