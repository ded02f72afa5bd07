// Package config provides configuration management for Static Vines.
//
// This package handles loading, validating, and defaulting configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("staticvines.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("staticvines.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention STATICVINES_SECTION_FIELD.
// For example:
//
//   - STATICVINES_GROWTH_KELP overrides growth.kelp
//   - STATICVINES_RELOAD_WATCH overrides reload.watch
//   - STATICVINES_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Growth Flags
//
// Every vine category has a flag. A flag missing from the file defaults to
// true, so an empty file suppresses all vine growth. The cave_vines key is a
// shorthand for both cave vine parts.
//
// Config values are plain data. The runtime view of the flags is the
// immutable policy.Flags built by Config.Flags and published by the
// configuration store in pkg/policy/manager.
//
// # Example Configuration
//
//	growth:
//	  regular_vine: true
//	  cave_vines: false
//	  kelp: false
//	  extra_blocks:
//	    examplemod:glow_vine: regular_vine
//
//	reload:
//	  watch: true
//	  resync_schedule: "*/5 * * * *"
package config
