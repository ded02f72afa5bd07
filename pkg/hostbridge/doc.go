// Package hostbridge connects a host's cancelable world events to the
// growth engine.
//
// Hosts fire events before applying a world change. The bridge turns each
// one into an engine.GrowthEvent, asks the engine for a decision, and
// cancels the host event when the decision is veto:
//
//	NeighborNotifyEvent  neighbor_spread
//	GrowFeatureEvent     feature_growth
//	RandomTickEvent      feature_growth
//	BreakEvent           block_break_adjacency (never canceled)
//	EntityPlaceEvent     player_placement (never canceled)
//
// A host that already owns its configuration can use an
// engine.GrowthEngine backed by a source.MemorySource; a standalone
// deployment uses the manager.Store.
package hostbridge
