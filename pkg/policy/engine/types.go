package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

// EventKind identifies the host callback a growth event came from.
type EventKind int

const (
	// NeighborSpread is a neighbor update that would let a vine spread.
	NeighborSpread EventKind = iota + 1
	// FeatureGrowth is a feature or random-tick growth of the subject block.
	FeatureGrowth
	// BlockBreakAdjacency is a block removal next to possible vines.
	BlockBreakAdjacency
	// PlayerPlacement is a block placed by a player.
	PlayerPlacement
)

var eventKindNames = map[EventKind]string{
	NeighborSpread:      "neighbor_spread",
	FeatureGrowth:       "feature_growth",
	BlockBreakAdjacency: "block_break_adjacency",
	PlayerPlacement:     "player_placement",
}

// EventKinds lists every supported kind.
var EventKinds = []EventKind{NeighborSpread, FeatureGrowth, BlockBreakAdjacency, PlayerPlacement}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event_kind(%d)", int(k))
}

// ParseEventKind parses the name produced by String.
func ParseEventKind(s string) (EventKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range eventKindNames {
		if name == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedEventKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEventKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Decision is the engine's answer to the host.
type Decision int

const (
	// Allow lets the host apply the world mutation.
	Allow Decision = iota
	// Veto tells the host to cancel the world mutation.
	Veto
)

func (d Decision) String() string {
	if d == Veto {
		return "veto"
	}
	return "allow"
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// BlockReader resolves the block at a position. It is implemented by the host
// world. Implementations may return an error or panic; both are contained.
type BlockReader interface {
	BlockAt(pos vine.Pos) (vine.Identity, error)
}

// FlagSource supplies the current flags snapshot.
type FlagSource interface {
	Flags() *policy.Flags
}

// GrowthEvent is one host callback invocation. It is consumed synchronously
// and never retained.
type GrowthEvent struct {
	Kind EventKind
	Pos  vine.Pos

	// Subject is the block the event concerns. When nil it is resolved
	// through World at Pos.
	Subject vine.Identity

	// World is used to resolve the subject and, for break events, its neighbors.
	World BlockReader

	// WorldName labels log lines. Optional.
	WorldName string
}

// Reason explains how a verdict was reached.
type Reason string

const (
	ReasonPlayerPlacement Reason = "player_placement"
	ReasonSuppressed      Reason = "suppressed"
	ReasonGrowthEnabled   Reason = "growth_enabled"
	ReasonNotVine         Reason = "not_a_vine"
	ReasonObservational   Reason = "observational"
	ReasonFault           Reason = "fault"
)

// NeighborVine is a vine found next to a broken block.
type NeighborVine struct {
	Direction  vine.Direction `json:"direction"`
	Pos        vine.Pos       `json:"pos"`
	BlockID    string         `json:"block_id"`
	Category   vine.Category  `json:"category"`
	Suppressed bool           `json:"suppressed"`
}

// Verdict is a decision with the detail that produced it.
type Verdict struct {
	Decision  Decision       `json:"decision"`
	Kind      EventKind      `json:"kind"`
	Pos       vine.Pos       `json:"pos"`
	BlockID   string         `json:"block_id,omitempty"`
	Category  vine.Category  `json:"category"`
	Reason    Reason         `json:"reason"`
	Err       error          `json:"-"`
	Neighbors []NeighborVine `json:"neighbors,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Error returns the fault message, or "" when evaluation succeeded.
func (v *Verdict) Error() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

// Recorder receives decision telemetry. Implementations must be safe for
// concurrent use and must not block.
type Recorder interface {
	RecordDecision(kind, category, decision string, duration time.Duration)
	RecordFault(kind string)
	RecordNeighborVine(category string)
}

type nopRecorder struct{}

func (nopRecorder) RecordDecision(string, string, string, time.Duration) {}
func (nopRecorder) RecordFault(string)                                   {}
func (nopRecorder) RecordNeighborVine(string)                            {}
