// Package engine decides whether a growth event for a vine-like block is
// allowed or vetoed.
//
// The engine is a pure decision function over an event and a flags snapshot.
// It keeps no state between events, performs no I/O of its own, and takes no
// locks on the hot path, so hosts may call it from any number of world
// threads at once.
//
// # Event Kinds
//
//	neighbor_spread        classify subject, veto if its category is suppressed
//	feature_growth         same as neighbor_spread
//	block_break_adjacency  scan the six neighbors for diagnostics, always allow
//	player_placement       always allow, before any classification runs
//
// # Failure Model
//
// Evaluation fails open. A subject that cannot be resolved, a missing or
// malformed flags snapshot, an unsupported event kind, or a panic anywhere
// below the engine boundary all produce Allow. The fault is logged and
// counted; it is never returned to the host. A veto is only issued when the
// subject was classified into a known category and that category's flag is
// set. Blocks that classify as Unknown are allowed.
//
// # Basic Usage
//
//	eng, err := engine.New(engine.DefaultEngineConfig(), store, logger)
//	if err != nil {
//	    return err
//	}
//
//	// Inside the host's neighbor-update callback:
//	decision := eng.Handle(engine.GrowthEvent{
//	    Kind:  engine.NeighborSpread,
//	    Pos:   pos,
//	    World: world,
//	})
//	if decision == engine.Veto {
//	    event.SetCanceled(true)
//	}
package engine
