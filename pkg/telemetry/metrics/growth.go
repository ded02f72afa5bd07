package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coder-hombre/static-vines/pkg/config"
)

// GrowthMetrics tracks growth event decisions.
//
// Metrics:
//   - staticvines_growth_decisions_total: Decisions by event kind, category, and decision
//   - staticvines_growth_faults_total: Evaluations that failed open, by event kind
//   - staticvines_growth_evaluation_duration_seconds: Evaluation duration by event kind
//   - staticvines_growth_neighbor_vines_total: Vines found next to broken blocks
type GrowthMetrics struct {
	decisionsTotal *prometheus.CounterVec

	faultsTotal *prometheus.CounterVec

	evaluationDuration *prometheus.HistogramVec

	neighborVinesTotal *prometheus.CounterVec
}

// NewGrowthMetrics creates and registers growth metrics with the provided registry.
func NewGrowthMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GrowthMetrics {
	gm := &GrowthMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "growth_decisions_total",
				Help:      "Total number of growth event decisions",
			},
			[]string{"kind", "category", "decision"},
		),

		faultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "growth_faults_total",
				Help:      "Total number of growth evaluations that failed open",
			},
			[]string{"kind"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "growth_evaluation_duration_seconds",
				Help:      "Duration of growth event evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
			[]string{"kind"},
		),

		neighborVinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "growth_neighbor_vines_total",
				Help:      "Total number of vines observed next to broken blocks",
			},
			[]string{"category"},
		),
	}

	registry.MustRegister(
		gm.decisionsTotal,
		gm.faultsTotal,
		gm.evaluationDuration,
		gm.neighborVinesTotal,
	)

	return gm
}

// RecordDecision records one decision.
//
// Example:
//
//	gm.RecordDecision("neighbor_spread", "regular_vine", "veto", 800*time.Nanosecond)
func (gm *GrowthMetrics) RecordDecision(kind, category, decision string, duration time.Duration) {
	gm.decisionsTotal.WithLabelValues(kind, category, decision).Inc()
	gm.evaluationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordFault records an evaluation that failed open.
func (gm *GrowthMetrics) RecordFault(kind string) {
	gm.faultsTotal.WithLabelValues(kind).Inc()
}

// RecordNeighborVine records a vine found next to a broken block.
func (gm *GrowthMetrics) RecordNeighborVine(category string) {
	gm.neighborVinesTotal.WithLabelValues(category).Inc()
}
