package config

import "time"

// Default values for configuration fields.
const (
	// Reload defaults
	DefaultReloadDebounce = 100 * time.Millisecond

	// Diagnostics defaults
	DefaultSlowEvaluationThreshold = 5 * time.Millisecond

	// Admin defaults
	DefaultAdminListenAddress   = "127.0.0.1:9464"
	DefaultAdminReadTimeout     = 5 * time.Second
	DefaultAdminWriteTimeout    = 10 * time.Second
	DefaultAdminShutdownTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "staticvines"

	// Tracing defaults
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "staticvines"
)

// DefaultEvaluationDurationBuckets are histogram buckets sized for sub-millisecond decisions.
var DefaultEvaluationDurationBuckets = []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005}

// Default returns a configuration with every default applied. All growth
// categories are suppressed.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields with their default values. Explicit
// values, including explicit false growth flags, are left untouched.
func ApplyDefaults(cfg *Config) {
	applyGrowthDefaults(&cfg.Growth)

	if cfg.Reload.Debounce == 0 {
		cfg.Reload.Debounce = DefaultReloadDebounce
	}

	if cfg.Diagnostics.SlowEvaluationThreshold == 0 {
		cfg.Diagnostics.SlowEvaluationThreshold = DefaultSlowEvaluationThreshold
	}

	if cfg.Admin.ListenAddress == "" {
		cfg.Admin.ListenAddress = DefaultAdminListenAddress
	}
	if cfg.Admin.ReadTimeout == 0 {
		cfg.Admin.ReadTimeout = DefaultAdminReadTimeout
	}
	if cfg.Admin.WriteTimeout == 0 {
		cfg.Admin.WriteTimeout = DefaultAdminWriteTimeout
	}
	if cfg.Admin.ShutdownTimeout == 0 {
		cfg.Admin.ShutdownTimeout = DefaultAdminShutdownTimeout
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.EvaluationDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.EvaluationDurationBuckets = append([]float64(nil), DefaultEvaluationDurationBuckets...)
	}

	tr := &cfg.Telemetry.Tracing
	if tr.Endpoint == "" {
		tr.Endpoint = DefaultTracingEndpoint
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingSampleRatio
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingServiceName
	}
}

func applyGrowthDefaults(g *GrowthConfig) {
	// The cave_vines shorthand fills whichever part is not set explicitly.
	if g.CaveVines != nil {
		v := *g.CaveVines
		if g.CaveVineHead == nil {
			g.CaveVineHead = boolPtr(v)
		}
		if g.CaveVineSegment == nil {
			g.CaveVineSegment = boolPtr(v)
		}
		g.CaveVines = nil
	}

	for _, p := range []**bool{
		&g.RegularVine,
		&g.CaveVineHead,
		&g.CaveVineSegment,
		&g.WeepingVine,
		&g.TwistingVine,
		&g.Kelp,
	} {
		if *p == nil {
			*p = boolPtr(true)
		}
	}
}

func boolPtr(v bool) *bool {
	return &v
}
