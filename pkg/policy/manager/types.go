package manager

import (
	"time"

	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/policy"
)

// Reload results reported to the recorder.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultDefaulted = "defaulted"
)

// SourceDefaults is the Snapshot.Source of snapshots built from defaults.
const SourceDefaults = "defaults"

// Snapshot is one published configuration. It is never modified after
// publication; a reload publishes a new Snapshot.
type Snapshot struct {
	// ID uniquely identifies this snapshot
	ID string `json:"id"`

	// Generation increases by one with every publication
	Generation uint64 `json:"generation"`

	// Flags are the suppression flags the engine reads
	Flags *policy.Flags `json:"-"`

	// Config is the full configuration the flags were built from
	Config *config.Config `json:"-"`

	// Source is the file path, or SourceDefaults
	Source string `json:"source"`

	// Defaulted is true when the snapshot was built from defaults after a
	// failed initial load
	Defaulted bool `json:"defaulted"`

	// LoadedAt is the publication time
	LoadedAt time.Time `json:"loaded_at"`
}

// Status describes the store's load history.
type Status struct {
	Path        string    `json:"path"`
	Generation  uint64    `json:"generation"`
	SnapshotID  string    `json:"snapshot_id"`
	LoadedAt    time.Time `json:"loaded_at"`
	Defaulted   bool      `json:"defaulted"`
	LastAttempt time.Time `json:"last_attempt"`
	LastError   string    `json:"last_error,omitempty"`
	Loads       uint64    `json:"loads"`
	Failures    uint64    `json:"failures"`
}

// Healthy reports whether a snapshot is published and the most recent load
// attempt succeeded.
func (s Status) Healthy() bool {
	return s.Generation > 0 && s.LastError == ""
}

// ReloadRecorder receives configuration load telemetry.
type ReloadRecorder interface {
	RecordReload(result string, duration time.Duration)
	RecordSnapshot(generation uint64, flags map[string]bool)
}

// Reloader is implemented by anything that can be told to reload.
type Reloader interface {
	Reload() error
}

type nopRecorder struct{}

func (nopRecorder) RecordReload(string, time.Duration)     {}
func (nopRecorder) RecordSnapshot(uint64, map[string]bool) {}
