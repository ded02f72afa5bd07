package hostbridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/policy/engine/source"
	"github.com/coder-hombre/static-vines/pkg/vine"
	"github.com/coder-hombre/static-vines/pkg/world"
)

func newBridge(t *testing.T, flags *policy.Flags) (*Bridge, *source.MemorySource) {
	t.Helper()
	src := source.NewMemorySource(flags)
	eng, err := engine.New(engine.DefaultEngineConfig(), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(eng, nil), src
}

type strangeEvent struct{ Base }

func (*strangeEvent) Kind() engine.EventKind { return engine.EventKind(99) }

func TestBridge_CancelsSuppressedGrowth(t *testing.T) {
	b, _ := newBridge(t, policy.DefaultFlags())

	ev := &NeighborNotifyEvent{Base: Base{State: vine.BlockID("minecraft:vine")}}
	if got := b.OnNeighborNotify(ev); got != engine.Veto {
		t.Errorf("decision = %v, want veto", got)
	}
	if !ev.Canceled() {
		t.Error("vetoed event was not canceled")
	}
}

func TestBridge_EventKinds(t *testing.T) {
	flags, err := policy.DefaultFlags().With(vine.Kelp, false)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := newBridge(t, flags)

	grid := world.NewGrid("overworld")
	vinePos := vine.Pos{Y: 70}
	kelpPos := vine.Pos{X: 4, Y: 40}
	if err := grid.Set(vinePos, "minecraft:weeping_vines"); err != nil {
		t.Fatal(err)
	}
	if err := grid.Set(kelpPos, "minecraft:kelp"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		event        Event
		wantDecision engine.Decision
	}{
		{"neighbor notify on vine", &NeighborNotifyEvent{Base: Base{Pos: vinePos, World: grid}}, engine.Veto},
		{"grow feature on vine", &GrowFeatureEvent{Base: Base{Pos: vinePos, World: grid}}, engine.Veto},
		{"random tick on vine", &RandomTickEvent{Base: Base{Pos: vinePos, World: grid}}, engine.Veto},
		{"random tick on kelp with flag off", &RandomTickEvent{Base: Base{Pos: kelpPos, World: grid}}, engine.Allow},
		{"random tick on stone", &RandomTickEvent{Base: Base{Pos: vine.Pos{Y: 1}, World: grid}}, engine.Allow},
		{"break next to vine", &BreakEvent{Base: Base{Pos: vinePos.Offset(vine.Up), World: grid}}, engine.Allow},
		{"place vine", &EntityPlaceEvent{Base: Base{Pos: vinePos, State: vine.BlockID("minecraft:vine")}, Entity: "steve"}, engine.Allow},
		{"no world", &GrowFeatureEvent{Base: Base{Pos: vinePos}}, engine.Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Dispatch(tt.event)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.wantDecision {
				t.Errorf("decision = %v, want %v", got, tt.wantDecision)
			}
			if tt.event.Canceled() != (tt.wantDecision == engine.Veto) {
				t.Errorf("Canceled() = %v", tt.event.Canceled())
			}
		})
	}

	want := Stats{NeighborNotify: 1, GrowFeature: 2, RandomTick: 3, Break: 1, EntityPlace: 1, Canceled: 3}
	if diff := cmp.Diff(want, b.Stats()); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

func TestBridge_DispatchUnknownEvent(t *testing.T) {
	b, _ := newBridge(t, policy.DefaultFlags())
	got, err := b.Dispatch(&strangeEvent{})
	if !errors.Is(err, engine.ErrUnsupportedEventKind) {
		t.Errorf("error = %v, want ErrUnsupportedEventKind", err)
	}
	if got != engine.Allow {
		t.Errorf("decision = %v, want allow", got)
	}
}

func TestBridge_NilEvents(t *testing.T) {
	b, _ := newBridge(t, policy.DefaultFlags())

	handlers := map[string]func() engine.Decision{
		"neighbor notify": func() engine.Decision { return b.OnNeighborNotify(nil) },
		"grow feature":    func() engine.Decision { return b.OnGrowFeature(nil) },
		"random tick":     func() engine.Decision { return b.OnRandomTick(nil) },
		"break":           func() engine.Decision { return b.OnBreak(nil) },
		"entity place":    func() engine.Decision { return b.OnEntityPlace(nil) },
	}
	for name, handle := range handlers {
		t.Run(name, func(t *testing.T) {
			if got := handle(); got != engine.Allow {
				t.Errorf("decision = %v, want allow", got)
			}
		})
	}

	events := []Event{
		nil,
		(*NeighborNotifyEvent)(nil),
		(*GrowFeatureEvent)(nil),
		(*RandomTickEvent)(nil),
		(*BreakEvent)(nil),
		(*EntityPlaceEvent)(nil),
	}
	for _, ev := range events {
		got, err := b.Dispatch(ev)
		if !errors.Is(err, ErrNilEvent) {
			t.Errorf("Dispatch(%T) error = %v, want ErrNilEvent", ev, err)
		}
		if got != engine.Allow {
			t.Errorf("Dispatch(%T) = %v, want allow", ev, got)
		}
	}

	if diff := cmp.Diff(Stats{}, b.Stats()); diff != "" {
		t.Errorf("nil events were counted (-want +got):\n%s", diff)
	}
}

func TestBridge_FlagSwapVisibleToLaterEvents(t *testing.T) {
	b, src := newBridge(t, policy.DefaultFlags())
	state := vine.BlockID("minecraft:cave_vines_plant")

	if got := b.OnGrowFeature(&GrowFeatureEvent{Base: Base{State: state}}); got != engine.Veto {
		t.Fatalf("before swap = %v, want veto", got)
	}

	off, _ := src.Flags().With(vine.CaveVineSegment, false)
	src.Set(off)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ev := &GrowFeatureEvent{Base: Base{State: state}}
				if b.OnGrowFeature(ev) != engine.Allow || ev.Canceled() {
					t.Error("event after swap was vetoed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestBase_SetCanceled(t *testing.T) {
	ev := &BreakEvent{}
	ev.SetCanceled(true)
	if !ev.Canceled() {
		t.Error("SetCanceled(true) not reflected")
	}
	ev.SetCanceled(false)
	if ev.Canceled() {
		t.Error("SetCanceled(false) not reflected")
	}
}
