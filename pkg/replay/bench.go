package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/policy/engine/source"
	"github.com/coder-hombre/static-vines/pkg/vine"
	"github.com/coder-hombre/static-vines/pkg/world"
)

// ErrInconsistentDecision is returned when a benchmark decision disagreed
// with the flags the engine read for it.
var ErrInconsistentDecision = errors.New("decision inconsistent with observed flags")

// BenchConfig configures a synthetic load run.
type BenchConfig struct {
	// Worlds is the number of independent grids, each driven by its own
	// goroutines. Default: 3.
	Worlds int

	// WorkersPerWorld is the number of goroutines per grid. Default: 2.
	WorkersPerWorld int

	// EventsPerWorker bounds each worker. Default: 10000.
	EventsPerWorker int

	// ReloadInterval is how often the reloader toggles a flag. Zero
	// disables reloads.
	ReloadInterval time.Duration

	// Seed makes runs repeatable.
	Seed uint64
}

// DefaultBenchConfig returns a small configuration suitable for smoke runs.
func DefaultBenchConfig() BenchConfig {
	return BenchConfig{
		Worlds:          3,
		WorkersPerWorld: 2,
		EventsPerWorker: 10000,
		ReloadInterval:  time.Millisecond,
		Seed:            1,
	}
}

func (c *BenchConfig) applyDefaults() {
	d := DefaultBenchConfig()
	if c.Worlds <= 0 {
		c.Worlds = d.Worlds
	}
	if c.WorkersPerWorld <= 0 {
		c.WorkersPerWorld = d.WorkersPerWorld
	}
	if c.EventsPerWorker <= 0 {
		c.EventsPerWorker = d.EventsPerWorker
	}
}

// BenchResult summarizes a load run.
type BenchResult struct {
	RunID        string        `json:"run_id" yaml:"run_id"`
	Worlds       int           `json:"worlds" yaml:"worlds"`
	Workers      int           `json:"workers" yaml:"workers"`
	Events       int64         `json:"events" yaml:"events"`
	Vetoed       int64         `json:"vetoed" yaml:"vetoed"`
	Faults       int64         `json:"faults" yaml:"faults"`
	Inconsistent int64         `json:"inconsistent" yaml:"inconsistent"`
	Swaps        uint64        `json:"swaps" yaml:"swaps"`
	Duration     time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Throughput   float64       `json:"throughput" yaml:"throughput"`
}

// benchKinds are the kinds that can be vetoed; break events are excluded
// because their decision never depends on flags.
var benchKinds = []engine.EventKind{engine.NeighborSpread, engine.FeatureGrowth, engine.PlayerPlacement}

// Bench drives one engine from many goroutines while a reloader swaps the
// flags underneath it. Every decision is checked against the flags the
// engine observed, so a torn read shows up as an inconsistency.
func Bench(ctx context.Context, eng *engine.GrowthEngine, src *source.MemorySource, cfg BenchConfig, logger *slog.Logger) (*BenchResult, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	res := &BenchResult{
		RunID:   uuid.NewString(),
		Worlds:  cfg.Worlds,
		Workers: cfg.Worlds * cfg.WorkersPerWorld,
	}
	logger = logger.With("component", "bench", "run_id", res.RunID)

	grids := make([]*world.Grid, cfg.Worlds)
	for i := range grids {
		g, err := seedGrid(fmt.Sprintf("world-%d", i))
		if err != nil {
			return nil, err
		}
		grids[i] = g
	}
	swapsBefore := src.Swaps()

	var events, vetoed, faults, inconsistent atomic.Int64

	workCtx, stopReloads := context.WithCancel(ctx)
	defer stopReloads()

	reloads, reloadCtx := errgroup.WithContext(workCtx)
	if cfg.ReloadInterval > 0 {
		reloads.Go(func() error {
			return toggleFlags(reloadCtx, src, cfg.ReloadInterval, cfg.Seed)
		})
	}

	start := time.Now()
	workers, workerCtx := errgroup.WithContext(ctx)
	for w := range res.Workers {
		grid := grids[w%len(grids)]
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(w)))
		workers.Go(func() error {
			for n := 0; n < cfg.EventsPerWorker; n++ {
				if n%256 == 0 {
					if err := workerCtx.Err(); err != nil {
						return err
					}
				}
				ev := engine.GrowthEvent{
					Kind:      benchKinds[rng.IntN(len(benchKinds))],
					Pos:       vine.Pos{X: rng.IntN(benchColumns), Y: 0, Z: 0},
					World:     grid,
					WorldName: grid.Name(),
				}
				flags := src.Flags()
				v := eng.Evaluate(ev, flags)

				events.Add(1)
				if v.Decision == engine.Veto {
					vetoed.Add(1)
				}
				if v.Err != nil {
					faults.Add(1)
					continue
				}
				if !consistent(v, flags) {
					inconsistent.Add(1)
				}
			}
			return nil
		})
	}

	werr := workers.Wait()
	res.Duration = time.Since(start)
	stopReloads()
	if rerr := reloads.Wait(); rerr != nil && !errors.Is(rerr, context.Canceled) {
		return nil, fmt.Errorf("reloader: %w", rerr)
	}
	if werr != nil {
		return nil, werr
	}

	res.Events = events.Load()
	res.Vetoed = vetoed.Load()
	res.Faults = faults.Load()
	res.Inconsistent = inconsistent.Load()
	res.Swaps = src.Swaps() - swapsBefore
	if secs := res.Duration.Seconds(); secs > 0 {
		res.Throughput = float64(res.Events) / secs
	}

	logger.Info("bench finished",
		"events", res.Events,
		"vetoed", res.Vetoed,
		"swaps", res.Swaps,
		"inconsistent", res.Inconsistent,
		"duration_ms", res.Duration.Milliseconds(),
	)
	if res.Inconsistent > 0 {
		return res, fmt.Errorf("%w: %d of %d events", ErrInconsistentDecision, res.Inconsistent, res.Events)
	}
	return res, nil
}

// consistent reports whether v agrees with flags.
func consistent(v *engine.Verdict, flags *policy.Flags) bool {
	switch v.Reason {
	case engine.ReasonPlayerPlacement, engine.ReasonNotVine:
		return v.Decision == engine.Allow
	case engine.ReasonSuppressed:
		return v.Decision == engine.Veto && policy.ShouldSuppress(v.Category, flags)
	case engine.ReasonGrowthEnabled:
		return v.Decision == engine.Allow && !policy.ShouldSuppress(v.Category, flags)
	}
	return true
}

// benchColumns is the number of block columns in a seeded grid.
var benchColumns = len(benchBlocks)

var benchBlocks = []string{
	"minecraft:vine",
	"minecraft:cave_vines",
	"minecraft:cave_vines_plant",
	"minecraft:weeping_vines",
	"minecraft:twisting_vines",
	"minecraft:kelp",
	"minecraft:stone",
}

// seedGrid places one block of every category along the X axis at Y=0.
func seedGrid(name string) (*world.Grid, error) {
	g := world.NewGrid(name)
	for x, id := range benchBlocks {
		if err := g.Set(vine.Pos{X: x}, id); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// toggleFlags flips a random category every interval until ctx ends.
func toggleFlags(ctx context.Context, src *source.MemorySource, interval time.Duration, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, 0xf1a9))
	categories := vine.Known
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c := categories[rng.IntN(len(categories))]
			cur := src.Flags()
			v, _ := cur.Suppress(c)
			next, err := cur.With(c, !v)
			if err != nil {
				return err
			}
			src.Set(next)
		}
	}
}
