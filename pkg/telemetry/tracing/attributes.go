package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys. Custom keys live in the "staticvines." namespace.
const (
	AttrConfigPath       = "staticvines.config.path"
	AttrConfigGeneration = "staticvines.config.generation"
	AttrConfigSource     = "staticvines.config.source"
	AttrReloadResult     = "staticvines.reload.result"

	AttrRunID    = "staticvines.run_id"
	AttrScenario = "staticvines.scenario"
	AttrWorld    = "staticvines.world"

	AttrEventKind = "staticvines.event.kind"
	AttrBlockID   = "staticvines.block.id"
	AttrCategory  = "staticvines.category"
	AttrDecision  = "staticvines.decision"
	AttrReason    = "staticvines.reason"

	AttrGitCommit  = "staticvines.git.commit"
	AttrGitChanged = "staticvines.git.changed"
)

// ReloadAttributes describes a configuration load.
func ReloadAttributes(path, result string, generation uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrConfigPath, path),
		attribute.String(AttrReloadResult, result),
		attribute.Int64(AttrConfigGeneration, int64(generation)),
	}
}

// DecisionAttributes describes one evaluated growth event.
func DecisionAttributes(kind, blockID, category, decision, reason string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrEventKind, kind),
		attribute.String(AttrDecision, decision),
		attribute.String(AttrReason, reason),
	}
	if blockID != "" {
		attrs = append(attrs, attribute.String(AttrBlockID, blockID))
	}
	if category != "" {
		attrs = append(attrs, attribute.String(AttrCategory, category))
	}
	return attrs
}
