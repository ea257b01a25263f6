// Package metrics exports search progress to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"teams/solver"
)

var _ solver.Observer = (*Search)(nil)

// Search counts rounds, expansions and improvements of solver runs and
// tracks the cost of the latest improvement.
type Search struct {
	rounds       prometheus.Counter
	expansions   prometheus.Counter
	successors   prometheus.Histogram
	improvements prometheus.Counter
	bestCost     prometheus.Gauge
}

// NewSearch registers the search collectors with reg, or with
// prometheus.DefaultRegisterer when reg is nil. namespace defaults to
// "teams".
func NewSearch(reg prometheus.Registerer, namespace string) (*Search, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "teams"
	}

	s := &Search{
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "rounds_total",
			Help:      "Hill-climbing rounds started.",
		}),
		expansions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "expansions_total",
			Help:      "Frontier expansions performed.",
		}),
		successors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "successors",
			Help:      "Successors generated per expansion.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "improvements_total",
			Help:      "Snapshots emitted with a new best cost.",
		}),
		bestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "best_cost",
			Help:      "Cost of the most recently emitted snapshot.",
		}),
	}

	for _, c := range []prometheus.Collector{s.rounds, s.expansions, s.successors, s.improvements, s.bestCost} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Search) RoundStarted() {
	s.rounds.Inc()
}

func (s *Search) Expanded(successors int) {
	s.expansions.Inc()
	s.successors.Observe(float64(successors))
}

func (s *Search) Improved(cost int) {
	s.improvements.Inc()
	s.bestCost.Set(float64(cost))
}
