package vine

import (
	"fmt"
	"strings"
)

// Category is the semantic vine family a block belongs to.
type Category int

const (
	// Unknown is the result for any block the classifier does not recognize.
	Unknown Category = iota
	// RegularVine is the wall-climbing vine.
	RegularVine
	// CaveVineHead is the growing tip of a cave vine.
	CaveVineHead
	// CaveVineSegment is a non-tip cave vine section.
	CaveVineSegment
	// WeepingVine covers both the weeping vine tip and its body.
	WeepingVine
	// TwistingVine covers both the twisting vine tip and its body.
	TwistingVine
	// Kelp covers both the kelp tip and its body.
	Kelp
)

// Known lists every category except Unknown, in declaration order.
var Known = []Category{
	RegularVine,
	CaveVineHead,
	CaveVineSegment,
	WeepingVine,
	TwistingVine,
	Kelp,
}

var categoryNames = map[Category]string{
	Unknown:         "unknown",
	RegularVine:     "regular_vine",
	CaveVineHead:    "cave_vine_head",
	CaveVineSegment: "cave_vine_segment",
	WeepingVine:     "weeping_vine",
	TwistingVine:    "twisting_vine",
	Kelp:            "kelp",
}

var categoryDescriptions = map[Category]string{
	Unknown:         "Unknown",
	RegularVine:     "Regular Vine",
	CaveVineHead:    "Cave Vine (Main)",
	CaveVineSegment: "Cave Vine (Plant)",
	WeepingVine:     "Weeping Vine",
	TwistingVine:    "Twisting Vine",
	Kelp:            "Kelp",
}

// String returns the snake_case name used in configuration files and metric labels.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Description returns a human readable name for log output.
func (c Category) Description() string {
	if d, ok := categoryDescriptions[c]; ok {
		return d
	}
	return categoryDescriptions[Unknown]
}

// IsCaveVine reports whether c is either part of a cave vine.
func (c Category) IsCaveVine() bool {
	return c == CaveVineHead || c == CaveVineSegment
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory parses the name produced by String. Matching is case-insensitive
// and accepts hyphens in place of underscores.
func ParseCategory(s string) (Category, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, name := range categoryNames {
		if name == normalized {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown vine category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
