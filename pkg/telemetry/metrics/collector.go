package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coder-hombre/static-vines/pkg/config"
)

// Collector is the single entry point for Prometheus metrics in Static Vines.
// It implements the growth engine's Recorder and the configuration store's
// reload recorder.
//
// Every label set is bounded: event kinds, categories, decisions, and reload
// results are closed enumerations.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Growth decision metrics
	growthMetrics *GrowthMetrics

	// Configuration reload metrics
	configMetrics *ConfigMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "staticvines",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		cfg.EvaluationDurationBuckets = append([]float64(nil), config.DefaultEvaluationDurationBuckets...)
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.growthMetrics = NewGrowthMetrics(cfg, registry)
	c.configMetrics = NewConfigMetrics(cfg, registry)

	return c
}

// RecordDecision records a growth decision.
//
// Parameters:
//   - kind: Event kind (e.g., "neighbor_spread", "feature_growth")
//   - category: Vine category (e.g., "regular_vine", "unknown")
//   - decision: "allow" or "veto"
//   - duration: Evaluation duration
func (c *Collector) RecordDecision(kind, category, decision string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.growthMetrics.RecordDecision(kind, category, decision, duration)
}

// RecordFault records a growth evaluation that failed open.
func (c *Collector) RecordFault(kind string) {
	if !c.config.Enabled {
		return
	}

	c.growthMetrics.RecordFault(kind)
}

// RecordNeighborVine records a vine found next to a broken block.
func (c *Collector) RecordNeighborVine(category string) {
	if !c.config.Enabled {
		return
	}

	c.growthMetrics.RecordNeighborVine(category)
}

// RecordReload records a configuration load attempt.
//
// Parameters:
//   - result: "success", "failure", or "defaulted"
//   - duration: Time spent reading and validating the file
func (c *Collector) RecordReload(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.configMetrics.RecordReload(result, duration)
}

// RecordSnapshot records the newly published snapshot.
func (c *Collector) RecordSnapshot(generation uint64, flags map[string]bool) {
	if !c.config.Enabled {
		return
	}

	c.configMetrics.RecordSnapshot(generation, flags)
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
