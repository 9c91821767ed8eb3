package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ava12/jetpeg/parser"
	"github.com/ava12/jetpeg/realize"
	"github.com/ava12/jetpeg/source"
)

type matchOptions struct {
	grammarOptions
	rule        string
	expectError bool
	multiSample bool
	separator   string
	eval        bool
}

func newMatchCmd(cfg *config) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match -g <grammar_file> <input>...",
		Short: "Match input files against a grammar rule and print the results.",
		Args:  cobra.MinimumNArgs(1),
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

			names, e := expandInputs(args)
			if e != nil {
				return e
			}
			var srcs []*source.Source
			for _, name := range names {
				content, e := loadFile(name, cfg.in)
				if e != nil {
					return e
				}
				samples, e := makeSources(name, content, opts.multiSample, []byte(opts.separator))
				if e != nil {
					return e
				}
				srcs = append(srcs, samples...)
			}

			ctx, cancel := cfg.context()
			defer cancel()

			cfg.log.Debug("matching", "rule", rule, "inputs", len(srcs))
			results, e := p.MatchAll(ctx, rule, srcs)
			if e != nil {
				return e
			}
			return reportResults(ctx, cmd, cfg, &opts, srcs, results)
		},
	}
	opts.register(cmd, true)
	registerMatchFlags(cmd, &opts)
	cmd.Flags().BoolVarP(&opts.expectError, "expect-error", "e", false, "inputs contain syntax errors")
	cmd.Flags().BoolVarP(&opts.multiSample, "multi", "m", false, "input files contain multiple samples, first line is the separator")
	cmd.Flags().StringVarP(&opts.separator, "separator", "s", "", "treat an input file as multiple samples if it starts with this string")
	return cmd
}

func registerMatchFlags(cmd *cobra.Command, opts *matchOptions) {
	cmd.Flags().StringVarP(&opts.rule, "rule", "r", "", "rule to match, default is the first rule")
	cmd.Flags().BoolVar(&opts.eval, "eval", false, "evaluate value code of the results")
}

func newRealizer(cfg *config) *realize.Realizer {
	return realize.New(nil,
		realize.WithLogger(cfg.log.Named("realize")),
		realize.WithFallback(func(class string, data any) (any, error) {
			return objectMap(class, data), nil
		}),
	)
}

// result converts a match value for printing.
func result(ctx context.Context, r *realize.Realizer, v any) (any, error) {
	if r == nil {
		return plain(v), nil
	}
	return r.Realize(ctx, v)
}

func reportResults(ctx context.Context, cmd *cobra.Command, cfg *config, opts *matchOptions, srcs []*source.Source, results []parser.Result) error {
	var r *realize.Realizer
	if opts.eval {
		r = newRealizer(cfg)
	}

	out := cmd.OutOrStdout()
	failed := false
	for i, res := range results {
		name := srcs[i].Name()
		fmt.Fprintln(out, "###", name)

		if res.Err != nil {
			if opts.expectError {
				reportError(out, res.Err)
			} else {
				reportError(cmd.ErrOrStderr(), res.Err)
				failed = true
			}
			continue
		}

		if opts.expectError {
			fmt.Fprintln(cmd.ErrOrStderr(), "  *** expecting error, got success in", name)
			failed = true
			continue
		}

		v, e := result(ctx, r, res.Value)
		if e == nil {
			e = printValue(out, cfg.format(), v)
		}
		if e != nil {
			reportError(cmd.ErrOrStderr(), e)
			failed = true
		}
	}

	if failed {
		return fail(errSyntax, nil)
	}
	return nil
}

func reportError(w io.Writer, e error) {
	fmt.Fprintln(w, "  *** error:", e.Error())
}
