package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// ErrMissingCategory indicates a flags mapping without a value for a known category.
var ErrMissingCategory = errors.New("missing suppression flag")

// Flags is an immutable snapshot of per-category suppression flags.
// Every category in vine.Known has an explicit value. The zero value is
// not valid; use NewFlags or DefaultFlags.
type Flags struct {
	suppress [len(categorySlots)]bool
	valid    bool
}

// categorySlots fixes the array layout. It must list vine.Known.
var categorySlots = [...]vine.Category{
	vine.RegularVine,
	vine.CaveVineHead,
	vine.CaveVineSegment,
	vine.WeepingVine,
	vine.TwistingVine,
	vine.Kelp,
}

func slot(c vine.Category) (int, bool) {
	for i, s := range categorySlots {
		if s == c {
			return i, true
		}
	}
	return 0, false
}

// NewFlags builds flags from values. Every known category must be present;
// Unknown and undeclared categories are rejected.
func NewFlags(values map[vine.Category]bool) (*Flags, error) {
	f := &Flags{valid: true}
	var missing []string
	for i, c := range categorySlots {
		v, ok := values[c]
		if !ok {
			missing = append(missing, c.String())
			continue
		}
		f.suppress[i] = v
	}
	for c := range values {
		if _, ok := slot(c); !ok {
			return nil, fmt.Errorf("no suppression flag for category %s", c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCategory, strings.Join(missing, ", "))
	}
	return f, nil
}

// DefaultFlags returns flags that suppress growth for every category.
func DefaultFlags() *Flags {
	f := &Flags{valid: true}
	for i := range f.suppress {
		f.suppress[i] = true
	}
	return f
}

// Valid reports whether f was built by a constructor.
func (f *Flags) Valid() bool {
	return f != nil && f.valid
}

// Suppress returns the flag for c. The second result is false for Unknown,
// for undeclared categories, and for invalid flags.
func (f *Flags) Suppress(c vine.Category) (bool, bool) {
	if !f.Valid() {
		return false, false
	}
	i, ok := slot(c)
	if !ok {
		return false, false
	}
	return f.suppress[i], true
}

// With returns a copy of f with c set to v. f is unchanged.
func (f *Flags) With(c vine.Category, v bool) (*Flags, error) {
	if !f.Valid() {
		return nil, errors.New("invalid flags")
	}
	i, ok := slot(c)
	if !ok {
		return nil, fmt.Errorf("no suppression flag for category %s", c)
	}
	next := *f
	next.suppress[i] = v
	return &next, nil
}

// Map returns the flags as a fresh map keyed by category.
func (f *Flags) Map() map[vine.Category]bool {
	out := make(map[vine.Category]bool, len(categorySlots))
	if !f.Valid() {
		return out
	}
	for i, c := range categorySlots {
		out[c] = f.suppress[i]
	}
	return out
}

// Named returns the flags keyed by category name, for JSON output and metrics.
func (f *Flags) Named() map[string]bool {
	out := make(map[string]bool, len(categorySlots))
	for c, v := range f.Map() {
		out[c.String()] = v
	}
	return out
}

// AnyEnabled reports whether at least one category is suppressed.
func (f *Flags) AnyEnabled() bool {
	if !f.Valid() {
		return false
	}
	for _, v := range f.suppress {
		if v {
			return true
		}
	}
	return false
}

// Equal reports whether f and other hold the same values.
func (f *Flags) Equal(other *Flags) bool {
	if f.Valid() != other.Valid() {
		return false
	}
	if !f.Valid() {
		return true
	}
	return f.suppress == other.suppress
}

// String renders the flags as "name=bool" pairs sorted by name.
func (f *Flags) String() string {
	if !f.Valid() {
		return "flags(invalid)"
	}
	named := f.Named()
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%t", k, named[k])
	}
	return strings.Join(parts, " ")
}
