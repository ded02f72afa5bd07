package hostbridge

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/coder-hombre/static-vines/pkg/policy/engine"
)

// ErrNilEvent is returned by Dispatch for a nil host event.
var ErrNilEvent = errors.New("nil host event")

// Decider decides a growth event against the current flags.
// *engine.GrowthEngine implements it.
type Decider interface {
	Handle(event engine.GrowthEvent) engine.Decision
}

// Stats counts events seen by the bridge.
type Stats struct {
	NeighborNotify uint64 `json:"neighbor_notify"`
	GrowFeature    uint64 `json:"grow_feature"`
	RandomTick     uint64 `json:"random_tick"`
	Break          uint64 `json:"break"`
	EntityPlace    uint64 `json:"entity_place"`
	Canceled       uint64 `json:"canceled"`
}

// Bridge adapts host callbacks onto the engine. Each handler builds a
// growth event, asks the engine, and cancels the host event on veto. It
// holds no per-event state and is safe for concurrent use.
type Bridge struct {
	decider Decider
	logger  *slog.Logger

	neighborNotify atomic.Uint64
	growFeature    atomic.Uint64
	randomTick     atomic.Uint64
	breaks         atomic.Uint64
	entityPlace    atomic.Uint64
	canceled       atomic.Uint64
}

// New creates a bridge.
func New(decider Decider, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		decider: decider,
		logger:  logger.With("component", "hostbridge"),
	}
}

// OnNeighborNotify handles a neighbor update.
func (b *Bridge) OnNeighborNotify(ev *NeighborNotifyEvent) engine.Decision {
	if ev == nil {
		return engine.Allow
	}
	b.neighborNotify.Add(1)
	return b.apply(ev, ev.growthEvent(ev.Kind()))
}

// OnGrowFeature handles a feature growth attempt.
func (b *Bridge) OnGrowFeature(ev *GrowFeatureEvent) engine.Decision {
	if ev == nil {
		return engine.Allow
	}
	b.growFeature.Add(1)
	return b.apply(ev, ev.growthEvent(ev.Kind()))
}

// OnRandomTick handles a random tick.
func (b *Bridge) OnRandomTick(ev *RandomTickEvent) engine.Decision {
	if ev == nil {
		return engine.Allow
	}
	b.randomTick.Add(1)
	return b.apply(ev, ev.growthEvent(ev.Kind()))
}

// OnBreak handles a block break. The engine only observes breaks.
func (b *Bridge) OnBreak(ev *BreakEvent) engine.Decision {
	if ev == nil {
		return engine.Allow
	}
	b.breaks.Add(1)
	return b.apply(ev, ev.growthEvent(ev.Kind()))
}

// OnEntityPlace handles a block placement. Placements are always allowed.
func (b *Bridge) OnEntityPlace(ev *EntityPlaceEvent) engine.Decision {
	if ev == nil {
		return engine.Allow
	}
	b.entityPlace.Add(1)
	return b.apply(ev, ev.growthEvent(ev.Kind()))
}

// Dispatch routes ev to its handler. A nil event is allowed and reported
// as ErrNilEvent.
func (b *Bridge) Dispatch(ev Event) (engine.Decision, error) {
	if isNil(ev) {
		return engine.Allow, ErrNilEvent
	}
	switch e := ev.(type) {
	case *NeighborNotifyEvent:
		return b.OnNeighborNotify(e), nil
	case *GrowFeatureEvent:
		return b.OnGrowFeature(e), nil
	case *RandomTickEvent:
		return b.OnRandomTick(e), nil
	case *BreakEvent:
		return b.OnBreak(e), nil
	case *EntityPlaceEvent:
		return b.OnEntityPlace(e), nil
	default:
		return engine.Allow, fmt.Errorf("%w: host event %T", engine.ErrUnsupportedEventKind, ev)
	}
}

// Stats returns a copy of the bridge counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		NeighborNotify: b.neighborNotify.Load(),
		GrowFeature:    b.growFeature.Load(),
		RandomTick:     b.randomTick.Load(),
		Break:          b.breaks.Load(),
		EntityPlace:    b.entityPlace.Load(),
		Canceled:       b.canceled.Load(),
	}
}

func (b *Bridge) apply(ev Event, gev engine.GrowthEvent) engine.Decision {
	decision := b.decider.Handle(gev)
	if decision == engine.Veto {
		ev.SetCanceled(true)
		b.canceled.Add(1)
	}
	return decision
}

func isNil(ev Event) bool {
	switch e := ev.(type) {
	case nil:
		return true
	case *NeighborNotifyEvent:
		return e == nil
	case *GrowFeatureEvent:
		return e == nil
	case *RandomTickEvent:
		return e == nil
	case *BreakEvent:
		return e == nil
	case *EntityPlaceEvent:
		return e == nil
	}
	return false
}
