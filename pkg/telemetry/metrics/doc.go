// Package metrics provides Prometheus metrics collection for Static Vines.
//
// # Metrics Categories
//
//   - Growth Metrics: decisions by event kind, category, and outcome;
//     fail-open faults; evaluation latency; vines seen next to broken blocks
//   - Config Metrics: load attempts by result, load latency, the published
//     snapshot generation, and the current per-category flags
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	eng, err := engine.New(engine.DefaultEngineConfig().WithRecorder(collector), store, logger)
//	store := manager.NewStore(path, manager.WithRecorder(collector))
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// When metrics are disabled in configuration every Record call returns
// immediately, so the collector can be wired unconditionally.
package metrics
