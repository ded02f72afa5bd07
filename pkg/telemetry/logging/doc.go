// Package logging provides structured logging for Static Vines.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text, and console output formats
//   - A level that can be changed at runtime
//   - Context-aware logging with world, run, and snapshot identifiers
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logger.Info("configuration reloaded",
//	    "generation", 3,
//	    "duration_ms", 2,
//	)
//
//	// Components that take a *slog.Logger
//	eng, err := engine.New(cfg, store, logger.Slog())
//
//	// Context-aware logging
//	ctx = logging.WithWorld(ctx, "overworld")
//	logger.WithContext(ctx).Debug("growth vetoed")
package logging
