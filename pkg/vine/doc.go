// Package vine classifies block identities into vine growth categories.
//
// Classification is a table lookup over namespaced block ids. Anything the
// table does not know, including a nil identity, classifies as Unknown; the
// classifier never fails and never panics on its own input.
//
// # Basic Usage
//
//	c := vine.DefaultClassifier()
//	cat := c.Classify(vine.BlockID("minecraft:cave_vines_plant"))
//	// cat == vine.CaveVineSegment
//
// Additional growth-capable block families are added as data:
//
//	c := vine.NewClassifier(map[string]vine.Category{
//	    "examplemod:glow_vine": vine.RegularVine,
//	})
package vine
