package parser

import (
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Parser.
type Option func(p *Parser)

// WithLogger sets the logger. Compilation is logged at Debug level,
// the traced pass of a failed match logs rule calls at Trace level.
func WithLogger(log hclog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// WithMetrics registers match metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Parser) {
		p.registerer = reg
	}
}

// WithConcurrency limits the number of goroutines used by MatchAll, values less than 1 mean no limit.
func WithConcurrency(limit int) Option {
	return func(p *Parser) {
		p.concurrency = limit
	}
}

// WithoutOptimizer disables leftmost factoring.
func WithoutOptimizer() Option {
	return func(p *Parser) {
		p.noOptimizer = true
	}
}
