// Package policy holds the growth suppression flags and the predicate that
// decides whether growth of a vine category is suppressed.
//
// Flags values are immutable. A reload builds a new Flags value and publishes
// it wholesale; readers never observe a partially updated set.
package policy
