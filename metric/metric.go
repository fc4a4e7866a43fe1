// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package metric provides Prometheus collectors for logicsim boards.
//
// All methods are safe to call on a nil *Metrics, so boards can report
// unconditionally.
//
package metric

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logicsim"

// Metrics holds the engine collectors.
//
type Metrics struct {
	Steps       *prometheus.CounterVec
	Passes      prometheus.Histogram
	Evaluations prometheus.Counter
	Rebuilds    prometheus.Counter
	Nets        *prometheus.GaugeVec
}

// New creates the engine collectors. They are not registered.
//
func New() *Metrics {
	return &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "steps_total",
				Help:      "Total number of simulation steps by outcome",
			},
			[]string{"board", "status"},
		),
		Passes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "passes",
				Help:      "Propagation passes per step",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		Evaluations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "evaluations_total",
				Help:      "Total number of component evaluations",
			},
		),
		Rebuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "nets",
				Name:      "rebuilds_total",
				Help:      "Total number of net rebuilds after topology edits",
			},
		),
		Nets: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "nets",
				Name:      "count",
				Help:      "Number of nets in the current topology of a board",
			},
			[]string{"board"},
		),
	}
}

// Register creates the engine collectors and registers them with r.
//
func Register(r prometheus.Registerer) (*Metrics, error) {
	m := New()
	for _, c := range m.collectors() {
		if err := r.Register(c); err != nil {
			return nil, errors.Wrap(err, "register logicsim metrics")
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Steps, m.Passes, m.Evaluations, m.Rebuilds, m.Nets}
}

// ObserveStep records the outcome of a step of the named board.
//
func (m *Metrics) ObserveStep(board, status string, passes, evaluations int) {
	if m == nil {
		return
	}
	m.Steps.WithLabelValues(board, status).Inc()
	m.Passes.Observe(float64(passes))
	m.Evaluations.Add(float64(evaluations))
}

// ObserveRebuild records a net rebuild of the named board.
//
func (m *Metrics) ObserveRebuild(board string, nets int) {
	if m == nil {
		return
	}
	m.Rebuilds.Inc()
	m.Nets.WithLabelValues(board).Set(float64(nets))
}
