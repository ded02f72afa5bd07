package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "STATICVINES_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults, and validates it.
// Unknown keys are rejected so that a misspelled flag does not silently
// fall back to its default.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse configuration: %w", err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention STATICVINES_SECTION_FIELD (e.g., STATICVINES_GROWTH_KELP).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed values are ignored.
func applyEnvOverrides(cfg *Config) {
	// Growth overrides, one per category
	for _, c := range vine.Known {
		if b, ok := envBool("GROWTH_" + envName(c)); ok {
			cfg.Growth.Set(c, b)
		}
	}

	// Reload overrides
	if b, ok := envBool("RELOAD_WATCH"); ok {
		cfg.Reload.Watch = b
	}
	if d, ok := envDuration("RELOAD_DEBOUNCE"); ok {
		cfg.Reload.Debounce = d
	}
	if val, ok := os.LookupEnv(EnvPrefix + "RELOAD_RESYNC_SCHEDULE"); ok {
		cfg.Reload.ResyncSchedule = val
	}

	// Diagnostics overrides
	if b, ok := envBool("DIAGNOSTICS_NEIGHBOR_SCAN"); ok {
		cfg.Diagnostics.NeighborScan = b
	}
	if b, ok := envBool("DIAGNOSTICS_LOG_DECISIONS"); ok {
		cfg.Diagnostics.LogDecisions = b
	}

	// Admin overrides
	if b, ok := envBool("ADMIN_ENABLED"); ok {
		cfg.Admin.Enabled = b
	}
	if val := os.Getenv(EnvPrefix + "ADMIN_LISTEN_ADDRESS"); val != "" {
		cfg.Admin.ListenAddress = val
	}

	// Telemetry overrides
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if b, ok := envBool("TELEMETRY_METRICS_ENABLED"); ok {
		cfg.Telemetry.Metrics.Enabled = b
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if b, ok := envBool("TELEMETRY_TRACING_ENABLED"); ok {
		cfg.Telemetry.Tracing.Enabled = b
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

// envName converts a category to its environment variable segment,
// e.g. cave_vine_head to CAVE_VINE_HEAD.
func envName(c vine.Category) string {
	return strings.ToUpper(c.String())
}

func envBool(key string) (bool, bool) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}

func envDuration(key string) (time.Duration, bool) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}
