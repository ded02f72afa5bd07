package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coder-hombre/static-vines/pkg/config"
)

// ConfigMetrics tracks configuration loads and the published snapshot.
//
// Metrics:
//   - staticvines_config_reloads_total: Load attempts by result ("success", "failure", "defaulted")
//   - staticvines_config_reload_duration_seconds: Load duration
//   - staticvines_config_snapshot_generation: Generation of the published snapshot
//   - staticvines_config_suppression_flag: 1 when growth of a category is suppressed
type ConfigMetrics struct {
	reloadsTotal *prometheus.CounterVec

	reloadDuration prometheus.Histogram

	snapshotGeneration prometheus.Gauge

	suppressionFlag *prometheus.GaugeVec
}

// NewConfigMetrics creates and registers configuration metrics with the provided registry.
func NewConfigMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConfigMetrics {
	cm := &ConfigMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "config_reloads_total",
				Help:      "Total number of configuration load attempts",
			},
			[]string{"result"},
		),

		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "config_reload_duration_seconds",
				Help:      "Duration of configuration loads in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
		),

		snapshotGeneration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "config_snapshot_generation",
				Help:      "Generation number of the published configuration snapshot",
			},
		),

		suppressionFlag: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "config_suppression_flag",
				Help:      "Suppression flag per vine category (1 = growth suppressed)",
			},
			[]string{"category"},
		),
	}

	registry.MustRegister(
		cm.reloadsTotal,
		cm.reloadDuration,
		cm.snapshotGeneration,
		cm.suppressionFlag,
	)

	return cm
}

// RecordReload records a load attempt.
func (cm *ConfigMetrics) RecordReload(result string, duration time.Duration) {
	cm.reloadsTotal.WithLabelValues(result).Inc()
	cm.reloadDuration.Observe(duration.Seconds())
}

// RecordSnapshot records the published snapshot's generation and flags.
func (cm *ConfigMetrics) RecordSnapshot(generation uint64, flags map[string]bool) {
	cm.snapshotGeneration.Set(float64(generation))
	for category, suppressed := range flags {
		v := 0.0
		if suppressed {
			v = 1
		}
		cm.suppressionFlag.WithLabelValues(category).Set(v)
	}
}
