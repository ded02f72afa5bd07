// Package server provides the admin HTTP server.
//
// The admin server is optional and off the growth path. It exposes:
//
//	/health    liveness
//	/ready     readiness (configuration snapshot and watcher checks)
//	/version   build information
//	/snapshot  the published configuration snapshot and load history
//	/stats     engine counters
//	/metrics   Prometheus metrics, when enabled
//
// # Basic Usage
//
//	srv, err := server.New(&cfg.Admin, server.Dependencies{
//	    Snapshots:   store,
//	    Engine:      eng,
//	    Checker:     checker,
//	    Metrics:     collector.Handler(),
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	    Logger:      logger,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package server
