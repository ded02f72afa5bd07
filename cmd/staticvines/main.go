// Static Vines stops vines, cave vines, weeping and twisting vines, and kelp
// from growing, category by category, while leaving player placement alone.
//
// The engine runs inside a game host through pkg/hostbridge. This binary
// hosts everything around it:
//
//	# Serve health, metrics and snapshot views while watching the config
//	staticvines run --config staticvines.yaml
//
//	# Check a configuration file and print the resolved flags
//	staticvines validate --config staticvines.yaml
//
//	# Write a commented default configuration if none exists
//	staticvines validate --write-default
//
//	# Show how block ids are classified
//	staticvines classify minecraft:kelp_plant cave_vines
//
//	# Replay a scripted world through the engine
//	staticvines replay --scenario testdata/cave.yaml
//
//	# Hammer the engine from many goroutines while flags change
//	staticvines bench --worlds 4 --workers 4 --events 100000
package main

import "os"

func main() {
	os.Exit(Execute())
}
