// Package replay drives the growth engine outside a game host.
//
// Runner plays a world.Scenario step by step against a fresh engine and a
// fresh grid, comparing each decision with the scenario's expectations.
// Bench hammers one engine from several goroutines while flags are swapped
// underneath it, and checks every decision against the flags it was made
// with.
package replay
