// Package parser compiles grammars into matchers and matches input with them.
//
// Every rule is compiled twice. The untraced variant is used for the regular match pass.
// If it fails, the traced variant is run on the same input to find the furthest failure
// and its reasons. Compiled parsers are immutable and safe for concurrent use.
package parser

import (
	"context"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/failure"
	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/layout"
	"github.com/ava12/jetpeg/optimizer"
	"github.com/ava12/jetpeg/output"
	"github.com/ava12/jetpeg/source"
)

// MaxModes is the number of distinct mode names a grammar may use.
const MaxModes = 64

// Parser is a compiled grammar.
type Parser struct {
	grammar *grammar.Grammar
	layout  *layout.Layout
	procs   map[string]*procedure
	modes   map[string]Modes

	log         hclog.Logger
	registerer  prometheus.Registerer
	metrics     *metrics
	concurrency int
	noOptimizer bool
	factored    int
}

// New checks and compiles g. g is not modified.
func New(g *grammar.Grammar, opts ...Option) (*Parser, error) {
	p := &Parser{log: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(p)
	}

	e := grammar.Check(g)
	if e != nil {
		return nil, e
	}

	analysis := grammar.Analyze(g)
	p.grammar = g
	if !p.noOptimizer {
		p.grammar, p.factored = optimizer.Optimize(g)
	}

	p.layout, e = layout.Compute(p.grammar)
	if e != nil {
		return nil, e
	}

	e = p.assignModes()
	if e != nil {
		return nil, e
	}

	p.procs = make(map[string]*procedure, len(p.grammar.Rules))
	leftRecursive := 0
	for _, r := range p.grammar.Rules {
		proc := &procedure{
			name:          r.Name,
			rule:          r,
			t:             p.layout.Rule(r.Name),
			leftRecursive: analysis.IsDirectlyLeftRecursive(r.Name),
		}
		if proc.leftRecursive {
			leftRecursive++
		}
		p.procs[r.Name] = proc
	}

	for variant := untraced; variant <= traced; variant++ {
		c := &compiler{p: p, variant: variant}
		for _, r := range p.grammar.Rules {
			p.procs[r.Name].bodies[variant] = c.compile(r.Body)
		}
	}

	p.metrics = newMetrics(p.registerer)
	p.log.Debug("grammar compiled",
		"rules", len(p.grammar.Rules),
		"types", len(p.layout.Types()),
		"factored", p.factored,
		"left-recursive", leftRecursive,
		"modes", len(p.modes))
	return p, nil
}

func (p *Parser) assignModes() error {
	p.modes = make(map[string]Modes)
	var e error
	add := func(name string) {
		if _, has := p.modes[name]; has || e != nil {
			return
		}
		if len(p.modes) >= MaxModes {
			e = tooManyModesError(name)
			return
		}
		p.modes[name] = Modes(1) << len(p.modes)
	}

	for _, r := range p.grammar.Rules {
		grammar.Walk(r.Body, func(x grammar.Expression) bool {
			switch n := x.(type) {
			case *grammar.EnterMode:
				add(n.Mode)
			case *grammar.LeaveMode:
				add(n.Mode)
			case *grammar.InMode:
				add(n.Mode)
			}
			return e == nil
		})
	}
	return e
}

// Rules returns rule names in definition order.
func (p *Parser) Rules() []string {
	return p.grammar.Names()
}

// Layout returns the value type of the named rule or nil if there is no such rule.
func (p *Parser) Layout(rule string) *layout.Type {
	return p.layout.Rule(rule)
}

// Grammar returns the compiled grammar, optimized unless WithoutOptimizer is used.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Match matches input against the named rule and returns the value built by output.Builder.
// Input may be a string, a byte slice, an io.Reader, or a *source.Source.
// A failed match returns *failure.ParsingError.
func (p *Parser) Match(rule string, input any) (any, error) {
	src, e := toSource(input)
	if e != nil {
		return nil, e
	}

	b := output.NewBuilder(src.Content())
	e = p.Run(rule, src, b)
	if e != nil {
		return nil, e
	}
	return b.Result(), nil
}

func toSource(input any) (*source.Source, error) {
	switch v := input.(type) {
	case *source.Source:
		return v, nil
	case string:
		return source.New("", []byte(v)), nil
	case []byte:
		return source.New("", v), nil
	case io.Reader:
		content, e := io.ReadAll(v)
		if e != nil {
			return nil, inputReadError(e)
		}
		name := ""
		if n, ok := v.(interface{ Name() string }); ok {
			name = n.Name()
		}
		return source.New(name, content), nil
	default:
		return nil, inputTypeError(input)
	}
}

// Run matches the whole content of src against the named rule and sends the value to ev.
// Nothing is sent to ev if the match fails, the error is *failure.ParsingError then.
func (p *Parser) Run(rule string, src *source.Source, ev output.Events) error {
	proc := p.procs[rule]
	if proc == nil {
		return unknownRuleError(rule)
	}

	started := time.Now()
	input := src.Content()
	out := make([]layout.Slot, proc.t.Size)
	s := newState(input, nil, p.log)
	end, ok := proc.invoke(s, untraced, 0, 0, out)
	if ok && end == len(input) {
		layout.Read(proc.t, out, ev)
		p.finish(s, proc, out)
		p.metrics.observe(rule, time.Since(started).Seconds(), true, false)
		return nil
	}
	if ok {
		p.finish(s, proc, out)
	}

	pe := p.trace(proc, src)
	p.metrics.observe(rule, time.Since(started).Seconds(), false, true)
	return pe
}

// trace runs the traced pass and returns the furthest failure.
func (p *Parser) trace(proc *procedure, src *source.Source) *failure.ParsingError {
	input := src.Content()
	tracker := failure.NewTracker()
	s := newState(input, tracker, p.log.Named("trace"))
	out := make([]layout.Slot, proc.t.Size)
	end, ok := proc.invoke(s, traced, 0, 0, out)
	if ok {
		if end < len(input) {
			tracker.Expect(end, failure.EndOfInput)
		}
		p.finish(s, proc, out)
	}

	pe := tracker.Error(src)
	if p.log.IsDebug() {
		p.log.Debug("match failed", "rule", proc.name, "source", src.Name(), "pos", pe.Pos, "reason", pe.Reason())
	}
	return pe
}

// finish releases the match value and checks that no boxes are left.
func (p *Parser) finish(s *state, proc *procedure, out []layout.Slot) {
	s.release(proc.t, out)
	if live := s.heap.Live(); live != 0 {
		jetpeg.Internalf("%d boxes left after matching rule %q", live, proc.name)
	}
}

// Result is the outcome of a single match of MatchAll.
type Result struct {
	Value any
	Err   error
}

// MatchAll matches every input against the named rule concurrently.
// The number of concurrent matches is limited by WithConcurrency.
// Failed matches are reported in results, the returned error is set only if the rule is unknown
// or ctx is done before all matches are started.
func (p *Parser) MatchAll(ctx context.Context, rule string, inputs []*source.Source) ([]Result, error) {
	if p.procs[rule] == nil {
		return nil, unknownRuleError(rule)
	}

	res := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}

	for i, src := range inputs {
		if gctx.Err() != nil {
			break
		}
		i, src := i, src
		g.Go(func() error {
			if e := gctx.Err(); e != nil {
				return e
			}
			v, e := p.Match(rule, src)
			res[i] = Result{v, e}
			return nil
		})
	}

	e := g.Wait()
	if e == nil {
		e = ctx.Err()
	}
	if e != nil {
		return nil, e
	}
	return res, nil
}
