// Package telemetry groups the observability packages of static vines.
//
//   - logging: slog based structured logging with a runtime adjustable level
//   - metrics: Prometheus counters and histograms for decisions and reloads
//   - tracing: OpenTelemetry spans for reloads, git polls, replays and admin requests
//   - health: liveness, readiness and version endpoints
//
// Only the decision counters are touched on the growth decision path.
package telemetry
