package parser

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	matches  *prometheus.CounterVec
	traced   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics creates match metrics and registers them with reg unless reg is nil.
// Parsers sharing a registerer share the metrics.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jetpeg_matches_total",
			Help: "Number of matches by start rule and result.",
		}, []string{"rule", "result"}),
		traced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jetpeg_traced_passes_total",
			Help: "Number of traced passes run to diagnose failed matches.",
		}, []string{"rule"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jetpeg_match_seconds",
			Help:    "Time to match an input including the traced pass.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"rule"}),
	}
	if reg != nil {
		m.matches = register(reg, m.matches)
		m.traced = register(reg, m.traced)
		m.duration = register(reg, m.duration)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	e := reg.Register(c)
	if e == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(e, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(e)
}

func (m *metrics) observe(rule string, seconds float64, success, traced bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.matches.WithLabelValues(rule, result).Inc()
	if traced {
		m.traced.WithLabelValues(rule).Inc()
	}
	m.duration.WithLabelValues(rule).Observe(seconds)
}
