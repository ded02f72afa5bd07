package vine

import "strings"

// DefaultNamespace is assumed for block ids that carry no namespace.
const DefaultNamespace = "minecraft"

// Identity is the host's handle to a block type. The classifier only reads it.
type Identity interface {
	BlockID() string
}

// BlockID is an Identity backed by a namespaced id string such as "minecraft:vine".
type BlockID string

// BlockID implements Identity.
func (b BlockID) BlockID() string { return string(b) }

// defaultTable maps every known vine-like block to its category.
var defaultTable = map[string]Category{
	"minecraft:vine":                 RegularVine,
	"minecraft:cave_vines":           CaveVineHead,
	"minecraft:cave_vines_plant":     CaveVineSegment,
	"minecraft:weeping_vines":        WeepingVine,
	"minecraft:weeping_vines_plant":  WeepingVine,
	"minecraft:twisting_vines":       TwistingVine,
	"minecraft:twisting_vines_plant": TwistingVine,
	"minecraft:kelp":                 Kelp,
	"minecraft:kelp_plant":           Kelp,
}

// Classifier maps block identities to categories. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	table map[string]Category
}

var defaultClassifier = &Classifier{table: defaultTable}

// DefaultClassifier returns the classifier over the built-in table.
func DefaultClassifier() *Classifier {
	return defaultClassifier
}

// NewClassifier returns a classifier over the built-in table plus extra.
// Entries in extra override built-in entries with the same normalized id.
// Entries mapping to Unknown or to an undeclared category are ignored.
func NewClassifier(extra map[string]Category) *Classifier {
	table := make(map[string]Category, len(defaultTable)+len(extra))
	for id, c := range defaultTable {
		table[id] = c
	}
	for id, c := range extra {
		key := NormalizeID(id)
		if key == "" || c == Unknown || !c.Valid() {
			continue
		}
		table[key] = c
	}
	return &Classifier{table: table}
}

// Classify returns the category for identity, or Unknown.
func (c *Classifier) Classify(identity Identity) Category {
	if identity == nil {
		return Unknown
	}
	return c.ClassifyID(identity.BlockID())
}

// ClassifyID classifies a raw block id.
func (c *Classifier) ClassifyID(id string) Category {
	key := NormalizeID(id)
	if key == "" {
		return Unknown
	}
	if cat, ok := c.table[key]; ok {
		return cat
	}
	return Unknown
}

// IDs returns the ids mapped to cat.
func (c *Classifier) IDs(cat Category) []string {
	var ids []string
	for id, mapped := range c.table {
		if mapped == cat {
			ids = append(ids, id)
		}
	}
	return ids
}

// Classify classifies identity with the default classifier.
func Classify(identity Identity) Category {
	return defaultClassifier.Classify(identity)
}

// IsVine reports whether identity is any known vine-like block.
func IsVine(identity Identity) bool {
	return Classify(identity) != Unknown
}

// NormalizeID lowercases and trims id and adds the default namespace when
// none is present. A malformed id (empty, or an empty namespace or path)
// normalizes to the empty string.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ""
	}
	ns, path, found := strings.Cut(id, ":")
	if !found {
		return DefaultNamespace + ":" + id
	}
	if ns == "" || path == "" || strings.Contains(path, ":") {
		return ""
	}
	return id
}
