package policy

import "github.com/coder-hombre/static-vines/pkg/vine"

// ShouldSuppress reports whether growth of category c is suppressed under f.
//
// Unknown always suppresses, whatever the flags say. For every other category
// the result is exactly the flag in f. Flags that are nil or invalid yield
// false for known categories; callers that must distinguish that case check
// f.Valid first.
func ShouldSuppress(c vine.Category, f *Flags) bool {
	if c == vine.Unknown {
		return true
	}
	v, _ := f.Suppress(c)
	return v
}
