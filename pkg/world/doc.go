// Package world provides a sparse in-memory voxel grid and a YAML scenario
// format for replaying growth events without a running host.
//
// A Grid satisfies the engine's block reader: BlockAt returns the block
// identity at a position, air for empty cells, and ErrOutOfBounds outside
// the vertical build limits.
//
// A Scenario describes an initial set of blocks, initial growth flags and
// an ordered list of steps. Each step is a growth event (optionally with an
// expected decision), a block change, or a change to the growth flags.
//
//	name: cave vine swap
//	world: overworld
//	growth:
//	  cave_vine_segment: true
//	blocks:
//	  - pos: {x: 0, y: 64, z: 0}
//	    block: minecraft:cave_vines_plant
//	steps:
//	  - event: feature_growth
//	    pos: {x: 0, y: 64, z: 0}
//	    expect: veto
//	  - growth: {cave_vine_segment: false}
//	  - event: feature_growth
//	    pos: {x: 0, y: 64, z: 0}
//	    expect: allow
package world
