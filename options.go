// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"io"
	"log/slog"

	"github.com/db47h/logicsim/metric"
)

// An Option configures a Board.
//
type Option func(*options)

type options struct {
	maxPasses int
	log       *slog.Logger
	metrics   *metric.Metrics
}

func defaultOptions() options {
	return options{
		maxPasses: DefaultMaxPasses,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithMaxPasses sets the number of propagation passes after which a step is
// reported as oscillating. Values less than 1 are ignored. Nested boards
// use the same cap for each of their own steps.
//
func WithMaxPasses(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPasses = n
		}
	}
}

// WithLogger sets the logger. By default, nothing is logged.
//
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics makes the board report to m.
//
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
