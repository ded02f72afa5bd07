package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "reload.debounce").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Disabling every growth flag is valid; suppression then never triggers.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateGrowth(&cfg.Growth)...)
	errs = append(errs, validateReload(&cfg.Reload)...)
	errs = append(errs, validateDiagnostics(&cfg.Diagnostics)...)
	errs = append(errs, validateAdmin(&cfg.Admin)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateGrowth validates the extra block table. Flags themselves cannot
// be invalid once defaults are applied.
func validateGrowth(cfg *GrowthConfig) []FieldError {
	var errs []FieldError

	for id, name := range cfg.ExtraBlocks {
		field := fmt.Sprintf("growth.extra_blocks[%s]", id)
		if vine.NormalizeID(id) == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("invalid block id %q: expected namespace:path", id),
			})
			continue
		}
		cat, err := vine.ParseCategory(name)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   field,
				Message: err.Error(),
			})
			continue
		}
		if cat == vine.Unknown {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "extra blocks cannot map to the unknown category",
			})
		}
	}

	return errs
}

// validateReload validates reload configuration.
func validateReload(cfg *ReloadConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "reload.debounce",
			Message: "debounce must be positive",
		})
	}

	if cfg.ResyncSchedule != "" {
		if _, err := cron.ParseStandard(cfg.ResyncSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "reload.resync_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.ResyncSchedule, err),
			})
		}
	}

	return errs
}

// validateDiagnostics validates diagnostics configuration.
func validateDiagnostics(cfg *DiagnosticsConfig) []FieldError {
	var errs []FieldError

	if cfg.SlowEvaluationThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "diagnostics.slow_evaluation_threshold",
			Message: "slow evaluation threshold must be positive",
		})
	}

	return errs
}

// validateAdmin validates admin server configuration.
func validateAdmin(cfg *AdminConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "admin.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "admin.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "admin.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "admin.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "admin.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	// Validate metrics prometheus path
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path is required when metrics are enabled",
		})
	} else if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	errs = append(errs, validateTracing(&cfg.Tracing)...)

	prev := 0.0
	for i, b := range cfg.Metrics.EvaluationDurationBuckets {
		if b <= prev {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.metrics.evaluation_duration_buckets[%d]", i),
				Message: "buckets must be positive and strictly increasing",
			})
			break
		}
		prev = b
	}

	return errs
}

// validateTracing validates tracing configuration.
func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: fmt.Sprintf("sample ratio must be between 0 and 1, got %g", cfg.SampleRatio),
		})
	}
	if cfg.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Endpoint); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: fmt.Sprintf("invalid endpoint %q: %v", cfg.Endpoint, err),
			})
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}
