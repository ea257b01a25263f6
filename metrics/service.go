package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Service instruments solve requests served over HTTP.
type Service struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewService(reg prometheus.Registerer, namespace string) (*Service, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "teams"
	}

	s := &Service{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "solve_runs_total",
			Help:      "Solve requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "solve_duration_seconds",
			Help:      "Wall time spent searching per solve request.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
	for _, c := range []prometheus.Collector{s.runs, s.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Solved records one finished solve request. outcome is a short label such
// as "ok" or "error".
func (s *Service) Solved(outcome string, elapsed time.Duration) {
	s.runs.WithLabelValues(outcome).Inc()
	s.duration.Observe(elapsed.Seconds())
}
