package manager

import (
	"errors"
	"fmt"
)

// ErrStoreClosed indicates a load was attempted after Close.
var ErrStoreClosed = errors.New("configuration store closed")

// LoadError represents a failed attempt to load the configuration file.
// The store keeps serving its previous snapshot when a LoadError occurs.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Defaulted is true when no previous snapshot existed and defaults were
	// published instead
	Defaulted bool

	// Cause is the underlying read, parse, or validation error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Defaulted {
		return fmt.Sprintf("failed to load configuration %q, using defaults: %v", e.FilePath, e.Cause)
	}
	return fmt.Sprintf("failed to load configuration %q, keeping previous snapshot: %v", e.FilePath, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
