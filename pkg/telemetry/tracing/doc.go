// Package tracing provides OpenTelemetry tracing for the control paths of
// static vines: configuration loads, git polls, replay runs and admin HTTP
// requests. Growth evaluation itself is never traced.
//
// Spans are exported over OTLP/gRPC. Sampling is one of "always", "never"
// or "ratio", each wrapped in a parent-based sampler:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// When tracing is disabled New returns a no-op Tracer, and every
// component accepts a nil *Tracer.
package tracing
