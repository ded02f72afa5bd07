package config

import (
	"fmt"
	"time"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

// Config is the root configuration structure for Static Vines.
// It contains the growth suppression flags, reload behavior, diagnostics,
// the admin HTTP surface, and telemetry settings.
type Config struct {
	// Growth contains one suppression flag per vine category.
	Growth GrowthConfig `yaml:"growth"`

	// Reload controls how configuration changes are picked up at runtime.
	Reload ReloadConfig `yaml:"reload"`

	// Diagnostics controls observational behavior that never affects decisions.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Admin contains configuration for the admin HTTP server (health,
	// metrics, snapshot inspection).
	Admin AdminConfig `yaml:"admin"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GrowthConfig holds the per-category suppression flags. A nil flag means
// "not set" and defaults to true (suppress growth).
type GrowthConfig struct {
	// RegularVine suppresses wall vine spreading.
	// Default: true
	RegularVine *bool `yaml:"regular_vine"`

	// CaveVines sets both cave vine parts at once. A per-part flag that is
	// set explicitly wins over this shorthand.
	CaveVines *bool `yaml:"cave_vines,omitempty"`

	// CaveVineHead suppresses growth of the cave vine tip.
	// Default: true
	CaveVineHead *bool `yaml:"cave_vine_head"`

	// CaveVineSegment suppresses growth of cave vine body sections.
	// Default: true
	CaveVineSegment *bool `yaml:"cave_vine_segment"`

	// WeepingVine suppresses weeping vine growth.
	// Default: true
	WeepingVine *bool `yaml:"weeping_vine"`

	// TwistingVine suppresses twisting vine growth.
	// Default: true
	TwistingVine *bool `yaml:"twisting_vine"`

	// Kelp suppresses kelp growth.
	// Default: true
	Kelp *bool `yaml:"kelp"`

	// ExtraBlocks maps additional block ids to a vine category name,
	// e.g. "examplemod:glow_vine: regular_vine".
	ExtraBlocks map[string]string `yaml:"extra_blocks,omitempty"`
}

// ReloadConfig controls configuration hot reload.
type ReloadConfig struct {
	// Watch enables reloading when the configuration file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period after a file event before reloading.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// ResyncSchedule is an optional cron expression (standard five-field
	// syntax) for periodic reloads, covering file systems where change
	// notifications are unreliable. Empty disables resync.
	// Default: ""
	ResyncSchedule string `yaml:"resync_schedule"`
}

// DiagnosticsConfig controls diagnostic output.
type DiagnosticsConfig struct {
	// NeighborScan inspects the six neighbors of broken blocks for vines.
	// Default: false
	NeighborScan bool `yaml:"neighbor_scan"`

	// LogDecisions logs every growth decision at debug level.
	// Default: false
	LogDecisions bool `yaml:"log_decisions"`

	// SlowEvaluationThreshold logs evaluations that take longer.
	// Default: 5ms
	SlowEvaluationThreshold time.Duration `yaml:"slow_evaluation_threshold"`
}

// AdminConfig contains configuration for the admin HTTP server.
type AdminConfig struct {
	// Enabled starts the admin server with the run command.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address and port for the admin server.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 5s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration. Spans cover
	// reloads, replays and admin requests, never individual growth decisions.
	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled exports spans over OTLP/gRPC.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the "ratio" sampler, between 0 and 1. Use the
	// "never" sampler rather than a zero ratio.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as service.name.
	// Default: "staticvines"
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "staticvines"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// EvaluationDurationBuckets defines histogram buckets for evaluation
	// duration (seconds).
	// Default: [0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005]
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`
}

// Value returns the flag for c, treating an unset flag as true.
func (g *GrowthConfig) Value(c vine.Category) bool {
	if p := g.field(c); p != nil && *p != nil {
		return **p
	}
	return true
}

// Set sets the flag for c. It is a no-op for Unknown.
func (g *GrowthConfig) Set(c vine.Category, v bool) {
	if p := g.field(c); p != nil {
		*p = &v
	}
}

func (g *GrowthConfig) field(c vine.Category) **bool {
	switch c {
	case vine.RegularVine:
		return &g.RegularVine
	case vine.CaveVineHead:
		return &g.CaveVineHead
	case vine.CaveVineSegment:
		return &g.CaveVineSegment
	case vine.WeepingVine:
		return &g.WeepingVine
	case vine.TwistingVine:
		return &g.TwistingVine
	case vine.Kelp:
		return &g.Kelp
	}
	return nil
}

// Flags builds the immutable suppression flags for this configuration.
func (c *Config) Flags() (*policy.Flags, error) {
	values := make(map[vine.Category]bool, len(vine.Known))
	for _, cat := range vine.Known {
		values[cat] = c.Growth.Value(cat)
	}
	return policy.NewFlags(values)
}

// Classifier builds the block classifier including any extra blocks.
func (c *Config) Classifier() (*vine.Classifier, error) {
	if len(c.Growth.ExtraBlocks) == 0 {
		return vine.DefaultClassifier(), nil
	}
	extra := make(map[string]vine.Category, len(c.Growth.ExtraBlocks))
	for id, name := range c.Growth.ExtraBlocks {
		cat, err := vine.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("extra block %q: %w", id, err)
		}
		extra[id] = cat
	}
	return vine.NewClassifier(extra), nil
}
