package hostbridge

import (
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

// Event is a cancelable host event. Canceling it stops the host from
// applying the world change.
type Event interface {
	Kind() engine.EventKind
	Position() vine.Pos
	Canceled() bool
	SetCanceled(bool)
}

// Base carries the fields every host event shares.
type Base struct {
	// Pos is the position of the block the event is about.
	Pos vine.Pos

	// State is the block at Pos as the host sees it. When nil the engine
	// reads it from World.
	State vine.Identity

	// World reads neighbor blocks. May be nil.
	World engine.BlockReader

	// WorldName labels logs and metrics, e.g. "minecraft:the_nether".
	WorldName string

	canceled bool
}

// Position returns the event position.
func (b *Base) Position() vine.Pos { return b.Pos }

// Canceled reports whether the event has been canceled.
func (b *Base) Canceled() bool { return b.canceled }

// SetCanceled cancels or un-cancels the event.
func (b *Base) SetCanceled(v bool) { b.canceled = v }

func (b *Base) growthEvent(kind engine.EventKind) engine.GrowthEvent {
	return engine.GrowthEvent{
		Kind:      kind,
		Pos:       b.Pos,
		Subject:   b.State,
		World:     b.World,
		WorldName: b.WorldName,
	}
}

// NeighborNotifyEvent fires when a block receives a neighbor update that
// would let it spread.
type NeighborNotifyEvent struct {
	Base
	// Source is the position of the block that caused the update.
	Source vine.Pos
}

// Kind implements Event.
func (*NeighborNotifyEvent) Kind() engine.EventKind { return engine.NeighborSpread }

// GrowFeatureEvent fires when a block is about to grow, e.g. by bone meal.
type GrowFeatureEvent struct {
	Base
}

// Kind implements Event.
func (*GrowFeatureEvent) Kind() engine.EventKind { return engine.FeatureGrowth }

// RandomTickEvent fires when a block receives a random tick. Growing plant
// heads extend on random ticks, so it decides like feature growth.
type RandomTickEvent struct {
	Base
}

// Kind implements Event.
func (*RandomTickEvent) Kind() engine.EventKind { return engine.FeatureGrowth }

// BreakEvent fires when a block is broken. It is never canceled.
type BreakEvent struct {
	Base
	// Player is the breaking player's name, if any.
	Player string
}

// Kind implements Event.
func (*BreakEvent) Kind() engine.EventKind { return engine.BlockBreakAdjacency }

// EntityPlaceEvent fires when an entity places a block. It is never
// canceled.
type EntityPlaceEvent struct {
	Base
	// Entity names the placer, e.g. a player name.
	Entity string
}

// Kind implements Event.
func (*EntityPlaceEvent) Kind() engine.EventKind { return engine.PlayerPlacement }
