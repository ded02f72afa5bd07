package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithGrowth sets the flag for a category by name.
func (b *ConfigBuilder) WithGrowth(name string, v bool) *ConfigBuilder {
	switch name {
	case "regular_vine":
		b.cfg.Growth.RegularVine = &v
	case "cave_vine_head":
		b.cfg.Growth.CaveVineHead = &v
	case "cave_vine_segment":
		b.cfg.Growth.CaveVineSegment = &v
	case "weeping_vine":
		b.cfg.Growth.WeepingVine = &v
	case "twisting_vine":
		b.cfg.Growth.TwistingVine = &v
	case "kelp":
		b.cfg.Growth.Kelp = &v
	}
	return b
}

// WithExtraBlock maps an extra block id to a category name.
func (b *ConfigBuilder) WithExtraBlock(id, category string) *ConfigBuilder {
	if b.cfg.Growth.ExtraBlocks == nil {
		b.cfg.Growth.ExtraBlocks = make(map[string]string)
	}
	b.cfg.Growth.ExtraBlocks[id] = category
	return b
}

// WithResyncSchedule sets the reload resync schedule.
func (b *ConfigBuilder) WithResyncSchedule(schedule string) *ConfigBuilder {
	b.cfg.Reload.ResyncSchedule = schedule
	return b
}

// WithDebounce sets the reload debounce interval.
func (b *ConfigBuilder) WithDebounce(d time.Duration) *ConfigBuilder {
	b.cfg.Reload.Debounce = d
	return b
}

// WithAdminListenAddress sets the admin listen address.
func (b *ConfigBuilder) WithAdminListenAddress(addr string) *ConfigBuilder {
	b.cfg.Admin.ListenAddress = addr
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLogFormat sets the logging format.
func (b *ConfigBuilder) WithLogFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetrics enables or disables metrics.
func (b *ConfigBuilder) WithMetrics(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}
