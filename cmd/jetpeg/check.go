package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava12/jetpeg/grammar"
)

func newCheckCmd(cfg *config) *cobra.Command {
	var (
		printRules bool
		opts       grammarOptions
	)

	cmd := &cobra.Command{
		Use:   "check <grammar_file>...",
		Short: "Parse and compile grammar description files.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.files = args
			p, e := cfg.compile(&opts, nil)
			if e != nil {
				return e
			}

			out := cmd.OutOrStdout()
			if printRules {
				for _, r := range p.Grammar().Rules {
					fmt.Fprint(out, grammar.FormatRule(r))
				}
				return nil
			}

			fmt.Fprintf(out, "%d rules OK\n", len(p.Rules()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&printRules, "print", "p", false, "print compiled rules instead of a summary")
	cmd.Flags().BoolVar(&opts.noOptimize, "no-optimize", false, "compile the grammar as written, without factoring common prefixes")
	return cmd
}

func newLayoutCmd(cfg *config) *cobra.Command {
	var opts grammarOptions

	cmd := &cobra.Command{
		Use:   "layout -g <grammar_file> [<rule>...]",
		Short: "Print value types of grammar rules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, e := cfg.compile(&opts, nil)
			if e != nil {
				return e
			}

			rules := args
			if len(rules) == 0 {
				rules = p.Rules()
			}
			out := cmd.OutOrStdout()
			for _, name := range rules {
				t := p.Layout(name)
				if t == nil {
					return failf(errUsage, "unknown rule: %s", name)
				}
				fmt.Fprintf(out, "%s: %s\n", name, t)
			}
			return nil
		},
	}
	opts.register(cmd, true)
	return cmd
}
