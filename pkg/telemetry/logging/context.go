package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// WorldKey is the context key for the world or dimension name.
	WorldKey contextKey = "world"

	// RunIDKey is the context key for replay and benchmark run identifiers.
	RunIDKey contextKey = "run_id"

	// SnapshotIDKey is the context key for configuration snapshot identifiers.
	SnapshotIDKey contextKey = "snapshot_id"

	// ConfigPathKey is the context key for the configuration file path.
	ConfigPathKey contextKey = "config_path"

	// EventKindKey is the context key for the growth event kind.
	EventKindKey contextKey = "event_kind"
)

// WithWorld adds a world name to the context.
func WithWorld(ctx context.Context, world string) context.Context {
	return context.WithValue(ctx, WorldKey, world)
}

// GetWorld retrieves the world name from the context.
func GetWorld(ctx context.Context) string {
	if world, ok := ctx.Value(WorldKey).(string); ok {
		return world
	}
	return ""
}

// WithRunID adds a run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run identifier from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithSnapshotID adds a snapshot identifier to the context.
func WithSnapshotID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SnapshotIDKey, id)
}

// GetSnapshotID retrieves the snapshot identifier from the context.
func GetSnapshotID(ctx context.Context) string {
	if id, ok := ctx.Value(SnapshotIDKey).(string); ok {
		return id
	}
	return ""
}

// WithConfigPath adds a configuration file path to the context.
func WithConfigPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ConfigPathKey, path)
}

// GetConfigPath retrieves the configuration file path from the context.
func GetConfigPath(ctx context.Context) string {
	if path, ok := ctx.Value(ConfigPathKey).(string); ok {
		return path
	}
	return ""
}

// WithEventKind adds a growth event kind to the context.
func WithEventKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, EventKindKey, kind)
}

// GetEventKind retrieves the growth event kind from the context.
func GetEventKind(ctx context.Context) string {
	if kind, ok := ctx.Value(EventKindKey).(string); ok {
		return kind
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if world := GetWorld(ctx); world != "" {
		fields = append(fields, "world", world)
	}
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if id := GetSnapshotID(ctx); id != "" {
		fields = append(fields, "snapshot_id", id)
	}
	if path := GetConfigPath(ctx); path != "" {
		fields = append(fields, "config_path", path)
	}
	if kind := GetEventKind(ctx); kind != "" {
		fields = append(fields, "event_kind", kind)
	}

	return fields
}
