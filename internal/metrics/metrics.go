// Package metrics exposes prometheus collectors for the scheduler's
// generate/benchmark operations, wired into cmd/scheduler's optional
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/campusplan/scheduler/internal/bench"
)

// Collectors bundles every metric the engine emits. Register it once
// against a prometheus.Registerer at process start.
type Collectors struct {
	GenerateDuration *prometheus.HistogramVec
	GenerateResults  *prometheus.HistogramVec
	BestScore        *prometheus.GaugeVec
	Failures         *prometheus.CounterVec
}

// NewCollectors builds the metric set, labeling every series by
// algorithm so per-algorithm dashboards fall out of one registration.
func NewCollectors() *Collectors {
	return &Collectors{
		GenerateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campusplan",
			Subsystem: "scheduler",
			Name:      "generate_duration_seconds",
			Help:      "Wall-clock time a scheduler spent on one Generate call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		GenerateResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campusplan",
			Subsystem: "scheduler",
			Name:      "generate_result_count",
			Help:      "Number of finalized candidate schedules returned per Generate call.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"algorithm"}),
		BestScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "campusplan",
			Subsystem: "scheduler",
			Name:      "best_score",
			Help:      "Preference score of the top-ranked candidate from the most recent Generate call.",
		}, []string{"algorithm"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusplan",
			Subsystem: "scheduler",
			Name:      "generate_failures_total",
			Help:      "Count of Generate calls that returned an engine.Error.",
		}, []string{"algorithm", "kind"}),
	}
}

// MustRegister registers every collector against reg.
func (c *Collectors) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.GenerateDuration, c.GenerateResults, c.BestScore, c.Failures)
}

// ObserveRunStats records one bench.RunStats into the collectors.
func (c *Collectors) ObserveRunStats(stat bench.RunStats) {
	c.GenerateDuration.WithLabelValues(stat.Algorithm).Observe(stat.Duration.Seconds())
	if stat.Err != nil {
		c.Failures.WithLabelValues(stat.Algorithm, "error").Inc()
		return
	}
	c.GenerateResults.WithLabelValues(stat.Algorithm).Observe(float64(stat.ResultCount))
	c.BestScore.WithLabelValues(stat.Algorithm).Set(stat.BestScore)
	if stat.ResultCount == 0 {
		c.Failures.WithLabelValues(stat.Algorithm, "no_feasible_schedule").Inc()
	}
}
