package engine

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

// mapWorld is a BlockReader over a fixed map.
type mapWorld map[vine.Pos]string

func (w mapWorld) BlockAt(pos vine.Pos) (vine.Identity, error) {
	id, ok := w[pos]
	if !ok {
		return vine.BlockID("minecraft:air"), nil
	}
	return vine.BlockID(id), nil
}

type failingWorld struct{ err error }

func (w failingWorld) BlockAt(vine.Pos) (vine.Identity, error) { return nil, w.err }

type panickingWorld struct{}

func (panickingWorld) BlockAt(vine.Pos) (vine.Identity, error) { panic("chunk not loaded") }

type nilWorld struct{}

func (nilWorld) BlockAt(vine.Pos) (vine.Identity, error) { return nil, nil }

type panickingIdentity struct{}

func (panickingIdentity) BlockID() string { panic(errors.New("stale block state")) }

// swapSource publishes flags through an atomic pointer, like the config store.
type swapSource struct {
	p     atomic.Pointer[policy.Flags]
	reads atomic.Int64
}

func (s *swapSource) Flags() *policy.Flags {
	s.reads.Add(1)
	return s.p.Load()
}

type countingRecorder struct {
	mu        sync.Mutex
	decisions map[string]int
	faults    map[string]int
	neighbors map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		decisions: map[string]int{},
		faults:    map[string]int{},
		neighbors: map[string]int{},
	}
}

func (r *countingRecorder) RecordDecision(kind, category, decision string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions[kind+"/"+category+"/"+decision]++
}

func (r *countingRecorder) RecordFault(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[kind]++
}

func (r *countingRecorder) RecordNeighborVine(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.neighbors[category]++
}

type panickingRecorder struct{}

func (panickingRecorder) RecordDecision(string, string, string, time.Duration) { panic("registry gone") }
func (panickingRecorder) RecordFault(string)                                   { panic("registry gone") }
func (panickingRecorder) RecordNeighborVine(string)                            { panic("registry gone") }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, cfg *EngineConfig, source FlagSource) *GrowthEngine {
	t.Helper()
	eng, err := New(cfg, source, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func flagsWith(t *testing.T, c vine.Category, v bool) *policy.Flags {
	t.Helper()
	f, err := policy.DefaultFlags().With(c, v)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	return f
}

func allOff(t *testing.T) *policy.Flags {
	t.Helper()
	m := make(map[vine.Category]bool)
	for _, c := range vine.Known {
		m[c] = false
	}
	f, err := policy.NewFlags(m)
	if err != nil {
		t.Fatalf("NewFlags: %v", err)
	}
	return f
}

func TestOnGrowthEvent_Scenarios(t *testing.T) {
	eng := newTestEngine(t, nil, nil)
	origin := vine.Pos{X: 4, Y: 64, Z: -2}

	tests := []struct {
		name  string
		event GrowthEvent
		flags *policy.Flags
		want  Decision
	}{
		{
			name:  "regular vine neighbor spread suppressed",
			event: GrowthEvent{Kind: NeighborSpread, Pos: origin, Subject: vine.BlockID("minecraft:vine")},
			flags: policy.DefaultFlags(),
			want:  Veto,
		},
		{
			name:  "kelp feature growth enabled",
			event: GrowthEvent{Kind: FeatureGrowth, Pos: origin, Subject: vine.BlockID("minecraft:kelp_plant")},
			flags: flagsWith(t, vine.Kelp, false),
			want:  Allow,
		},
		{
			name:  "unresolvable subject fails open",
			event: GrowthEvent{Kind: FeatureGrowth, Pos: origin, World: failingWorld{err: errors.New("unloaded")}},
			flags: policy.DefaultFlags(),
			want:  Allow,
		},
		{
			name:  "subject resolved through world",
			event: GrowthEvent{Kind: FeatureGrowth, Pos: origin, World: mapWorld{origin: "minecraft:cave_vines"}},
			flags: policy.DefaultFlags(),
			want:  Veto,
		},
		{
			name:  "non vine block allowed",
			event: GrowthEvent{Kind: NeighborSpread, Pos: origin, Subject: vine.BlockID("minecraft:stone")},
			flags: policy.DefaultFlags(),
			want:  Allow,
		},
		{
			name:  "all flags off",
			event: GrowthEvent{Kind: NeighborSpread, Pos: origin, Subject: vine.BlockID("minecraft:weeping_vines")},
			flags: allOff(t),
			want:  Allow,
		},
		{
			name:  "player placement of suppressed vine",
			event: GrowthEvent{Kind: PlayerPlacement, Pos: origin, Subject: vine.BlockID("minecraft:vine")},
			flags: policy.DefaultFlags(),
			want:  Allow,
		},
		{
			name:  "break next to vines",
			event: GrowthEvent{Kind: BlockBreakAdjacency, Pos: origin, World: mapWorld{origin.Offset(vine.Up): "minecraft:vine"}},
			flags: policy.DefaultFlags(),
			want:  Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eng.OnGrowthEvent(tt.event, tt.flags); got != tt.want {
				t.Errorf("OnGrowthEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_MatchesPolicyForEveryCategory(t *testing.T) {
	eng := newTestEngine(t, nil, nil)
	classifier := vine.DefaultClassifier()

	for _, c := range vine.Known {
		for _, flag := range []bool{true, false} {
			flags := flagsWith(t, c, flag)
			for _, id := range classifier.IDs(c) {
				for _, kind := range []EventKind{NeighborSpread, FeatureGrowth} {
					v := eng.Evaluate(GrowthEvent{Kind: kind, Subject: vine.BlockID(id)}, flags)
					want := Allow
					if flag {
						want = Veto
					}
					if v.Decision != want || v.Category != c || v.Err != nil {
						t.Errorf("%s %s flag=%v: got %v/%v err=%v, want %v/%v", kind, id, flag, v.Decision, v.Category, v.Err, want, c)
					}
				}
			}
		}
	}
}

func TestEvaluate_PlacementBypassesPolicy(t *testing.T) {
	source := &swapSource{}
	eng := newTestEngine(t, nil, source)

	events := []GrowthEvent{
		{Kind: PlayerPlacement, Subject: vine.BlockID("minecraft:vine")},
		{Kind: PlayerPlacement, Subject: panickingIdentity{}},
		{Kind: PlayerPlacement, World: panickingWorld{}},
		{Kind: PlayerPlacement},
	}
	for _, ev := range events {
		if got := eng.Handle(ev); got != Allow {
			t.Errorf("Handle(placement) = %v, want Allow", got)
		}
		v := eng.Evaluate(ev, nil)
		if v.Reason != ReasonPlayerPlacement || v.Err != nil || v.Category != vine.Unknown {
			t.Errorf("placement verdict = %+v", v)
		}
	}
	if n := source.reads.Load(); n != 0 {
		t.Errorf("placement read flags %d times, want 0", n)
	}
}

func TestEvaluate_BreakNeverVetoes(t *testing.T) {
	rec := newCountingRecorder()
	eng := newTestEngine(t, DefaultEngineConfig().WithRecorder(rec), nil)
	origin := vine.Pos{}

	world := mapWorld{
		origin:                    "minecraft:vine",
		origin.Offset(vine.Up):    "minecraft:vine",
		origin.Offset(vine.Down):  "minecraft:cave_vines_plant",
		origin.Offset(vine.East):  "minecraft:stone",
		origin.Offset(vine.North): "minecraft:kelp",
	}
	flags := flagsWith(t, vine.Kelp, false)

	worlds := []BlockReader{world, panickingWorld{}, failingWorld{err: io.EOF}, nilWorld{}, nil}
	for _, w := range worlds {
		v := eng.Evaluate(GrowthEvent{Kind: BlockBreakAdjacency, Pos: origin, World: w}, flags)
		if v.Decision != Allow {
			t.Errorf("break with world %T vetoed", w)
		}
	}

	v := eng.Evaluate(GrowthEvent{Kind: BlockBreakAdjacency, Pos: origin, World: world}, flags)
	want := []NeighborVine{
		{Direction: vine.Down, Pos: origin.Offset(vine.Down), BlockID: "minecraft:cave_vines_plant", Category: vine.CaveVineSegment, Suppressed: true},
		{Direction: vine.Up, Pos: origin.Offset(vine.Up), BlockID: "minecraft:vine", Category: vine.RegularVine, Suppressed: true},
		{Direction: vine.North, Pos: origin.Offset(vine.North), BlockID: "minecraft:kelp", Category: vine.Kelp, Suppressed: false},
	}
	if diff := cmp.Diff(want, v.Neighbors); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}
	if v.Reason != ReasonObservational {
		t.Errorf("reason = %q", v.Reason)
	}
	rec.mu.Lock()
	if rec.neighbors["regular_vine"] != 2 {
		t.Errorf("neighbor vine count = %d, want 2", rec.neighbors["regular_vine"])
	}
	rec.mu.Unlock()
}

func TestEvaluate_BreakScanDisabled(t *testing.T) {
	eng := newTestEngine(t, DefaultEngineConfig().WithNeighborScan(false), nil)
	v := eng.Evaluate(GrowthEvent{
		Kind:  BlockBreakAdjacency,
		World: mapWorld{{Y: 1}: "minecraft:vine"},
	}, policy.DefaultFlags())
	if len(v.Neighbors) != 0 || v.Decision != Allow {
		t.Errorf("verdict = %+v", v)
	}
}

func TestEvaluate_FaultsFailOpen(t *testing.T) {
	pos := vine.Pos{X: 1}
	vineWorld := mapWorld{pos: "minecraft:vine"}

	tests := []struct {
		name    string
		event   GrowthEvent
		flags   *policy.Flags
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "world read error",
			event:   GrowthEvent{Kind: FeatureGrowth, Pos: pos, World: failingWorld{err: io.ErrUnexpectedEOF}},
			flags:   policy.DefaultFlags(),
			wantErr: ErrUnresolvable,
		},
		{
			name:    "world returns nil identity",
			event:   GrowthEvent{Kind: NeighborSpread, Pos: pos, World: nilWorld{}},
			flags:   policy.DefaultFlags(),
			wantErr: ErrUnresolvable,
		},
		{
			name:    "no subject and no world",
			event:   GrowthEvent{Kind: NeighborSpread, Pos: pos},
			flags:   policy.DefaultFlags(),
			wantErr: ErrNoWorld,
		},
		{
			name:  "world panics",
			event: GrowthEvent{Kind: FeatureGrowth, Pos: pos, World: panickingWorld{}},
			flags: policy.DefaultFlags(),
			check: func(t *testing.T, err error) {
				var pe *PanicError
				if !errors.As(err, &pe) || pe.Value != "chunk not loaded" || len(pe.Stack) == 0 {
					t.Errorf("expected PanicError, got %v", err)
				}
			},
		},
		{
			name:  "identity panics",
			event: GrowthEvent{Kind: NeighborSpread, Pos: pos, Subject: panickingIdentity{}},
			flags: policy.DefaultFlags(),
			check: func(t *testing.T, err error) {
				var ce *ClassificationError
				if !errors.As(err, &ce) {
					t.Errorf("expected ClassificationError, got %T", err)
				}
				var pe *PanicError
				if !errors.As(err, &pe) || pe.Unwrap() == nil {
					t.Errorf("expected PanicError wrapping an error, got %v", err)
				}
			},
		},
		{
			name:    "nil snapshot",
			event:   GrowthEvent{Kind: FeatureGrowth, Pos: pos, World: vineWorld},
			flags:   nil,
			wantErr: ErrNoSnapshot,
		},
		{
			name:    "malformed snapshot",
			event:   GrowthEvent{Kind: FeatureGrowth, Pos: pos, World: vineWorld},
			flags:   &policy.Flags{},
			wantErr: ErrMalformedSnapshot,
		},
		{
			name:    "unsupported kind",
			event:   GrowthEvent{Kind: EventKind(42), Pos: pos, Subject: vine.BlockID("minecraft:vine")},
			flags:   policy.DefaultFlags(),
			wantErr: ErrUnsupportedEventKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newCountingRecorder()
			eng := newTestEngine(t, DefaultEngineConfig().WithRecorder(rec), nil)

			v := eng.Evaluate(tt.event, tt.flags)
			if v.Decision != Allow {
				t.Fatalf("decision = %v, want Allow", v.Decision)
			}
			if v.Reason != ReasonFault || v.Err == nil {
				t.Fatalf("expected fault verdict, got %+v", v)
			}
			if !IsFault(v.Err) {
				t.Errorf("IsFault(%v) = false", v.Err)
			}
			if tt.wantErr != nil && !errors.Is(v.Err, tt.wantErr) {
				t.Errorf("error = %v, want %v", v.Err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, v.Err)
			}
			if got := eng.Stats().Faults; got != 1 {
				t.Errorf("faults = %d, want 1", got)
			}
			rec.mu.Lock()
			defer rec.mu.Unlock()
			if rec.faults[tt.event.Kind.String()] != 1 {
				t.Errorf("recorded faults = %v", rec.faults)
			}
		})
	}
}

func TestEvaluate_UnknownSkipsSnapshot(t *testing.T) {
	source := &swapSource{}
	eng := newTestEngine(t, nil, source)

	v := eng.evaluate(GrowthEvent{Kind: NeighborSpread, Subject: vine.BlockID("minecraft:oak_log")}, source.Flags)
	if v.Decision != Allow || v.Reason != ReasonNotVine || v.Err != nil {
		t.Errorf("verdict = %+v", v)
	}
	if n := source.reads.Load(); n != 0 {
		t.Errorf("non-vine read flags %d times", n)
	}
}

func TestEvaluate_RecorderPanicContained(t *testing.T) {
	eng := newTestEngine(t, DefaultEngineConfig().WithRecorder(panickingRecorder{}), nil)

	for _, kind := range EventKinds {
		t.Run(kind.String(), func(t *testing.T) {
			var got Decision
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("panic escaped OnGrowthEvent: %v", r)
					}
				}()
				got = eng.OnGrowthEvent(GrowthEvent{Kind: kind, Subject: vine.BlockID("minecraft:vine")}, policy.DefaultFlags())
			}()
			if got != Allow {
				t.Errorf("decision = %v, want Allow after recorder panic", got)
			}
		})
	}
}

func TestHandle_NilSource(t *testing.T) {
	eng := newTestEngine(t, nil, nil)
	v := eng.evaluate(GrowthEvent{Kind: NeighborSpread, Subject: vine.BlockID("minecraft:vine")}, eng.sourceFlags)
	if v.Decision != Allow || !errors.Is(v.Err, ErrNoSnapshot) {
		t.Errorf("verdict = %+v", v)
	}
}

func TestHandle_ReloadUnderConcurrentReaders(t *testing.T) {
	source := &swapSource{}
	source.p.Store(policy.DefaultFlags())
	eng := newTestEngine(t, nil, source)

	off := flagsWith(t, vine.CaveVineSegment, false)
	event := GrowthEvent{Kind: FeatureGrowth, Subject: vine.BlockID("minecraft:cave_vines_plant")}

	const workers = 8
	var (
		wg      sync.WaitGroup
		swapped atomic.Bool
		stale   atomic.Int64
		torn    atomic.Int64
		stop    = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				after := swapped.Load()
				flags := source.Flags()
				// The other categories never change; a mixed view would show here.
				if v, _ := flags.Suppress(vine.RegularVine); !v {
					torn.Add(1)
				}
				d := eng.OnGrowthEvent(event, flags)
				if after && d != Allow {
					stale.Add(1)
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	source.p.Store(off)
	swapped.Store(true)
	time.Sleep(10 * time.Millisecond)
	close(stop)
	wg.Wait()

	if n := stale.Load(); n != 0 {
		t.Errorf("%d decisions after the swap observed the old flag", n)
	}
	if n := torn.Load(); n != 0 {
		t.Errorf("%d reads observed a partially updated snapshot", n)
	}
	for i := 0; i < 100; i++ {
		if d := eng.Handle(event); d != Allow {
			t.Fatalf("Handle after swap = %v, want Allow", d)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	eng := newTestEngine(t, nil, nil)
	ev := GrowthEvent{Kind: NeighborSpread, Subject: vine.BlockID("minecraft:twisting_vines")}
	flags := policy.DefaultFlags()

	first := eng.Evaluate(ev, flags)
	second := eng.Evaluate(ev, flags)
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(Verdict{}, "Duration")); diff != "" {
		t.Errorf("verdicts differ (-first +second):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	eng := newTestEngine(t, nil, nil)
	flags := policy.DefaultFlags()
	eng.OnGrowthEvent(GrowthEvent{Kind: NeighborSpread, Subject: vine.BlockID("minecraft:vine")}, flags)
	eng.OnGrowthEvent(GrowthEvent{Kind: PlayerPlacement}, flags)
	eng.OnGrowthEvent(GrowthEvent{Kind: FeatureGrowth}, flags)

	want := Stats{Evaluated: 3, Vetoed: 1, Faults: 1}
	if diff := cmp.Diff(want, eng.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestEventKind_Parse(t *testing.T) {
	for _, k := range EventKinds {
		got, err := ParseEventKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseEventKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseEventKind("sapling_growth"); !errors.Is(err, ErrUnsupportedEventKind) {
		t.Errorf("expected ErrUnsupportedEventKind, got %v", err)
	}
}

func TestEngineConfig_Validate(t *testing.T) {
	if err := DefaultEngineConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	cfg := DefaultEngineConfig().WithSlowEvaluationThreshold(-time.Second)
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(cfg, nil, nil); err == nil {
		t.Error("New accepted invalid config")
	}
}
