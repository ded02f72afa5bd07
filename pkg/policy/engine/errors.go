package engine

import (
	"errors"
	"fmt"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// Common sentinel errors
var (
	// ErrUnresolvable indicates the host could not resolve the block at the event position.
	ErrUnresolvable = errors.New("subject block could not be resolved")

	// ErrNoWorld indicates an event with neither a subject nor a world to resolve it from.
	ErrNoWorld = errors.New("event has no subject and no world")

	// ErrNoSnapshot indicates no flags snapshot was available.
	ErrNoSnapshot = errors.New("no flags snapshot available")

	// ErrMalformedSnapshot indicates a flags snapshot that was not built by a constructor.
	ErrMalformedSnapshot = errors.New("flags snapshot is malformed")

	// ErrUnsupportedEventKind indicates an event kind the engine does not handle.
	ErrUnsupportedEventKind = errors.New("unsupported event kind")

	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// ClassificationError indicates the event subject could not be read or classified.
type ClassificationError struct {
	Kind  EventKind
	Pos   vine.Pos
	Cause error
}

// Error returns the error message.
func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s at %s: classification failed: %v", e.Kind, e.Pos, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// PolicyReadError indicates the flags snapshot could not be read.
type PolicyReadError struct {
	Cause error
}

// Error returns the error message.
func (e *PolicyReadError) Error() string {
	return fmt.Sprintf("policy read failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PolicyReadError) Unwrap() error {
	return e.Cause
}

// PanicError carries a value recovered at the engine boundary.
type PanicError struct {
	Value any
	Stack []byte
}

// Error returns the error message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("recovered panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsFault reports whether err came from the engine's fault taxonomy.
func IsFault(err error) bool {
	var ce *ClassificationError
	var pe *PolicyReadError
	return errors.As(err, &ce) || errors.As(err, &pe) || errors.Is(err, ErrUnsupportedEventKind)
}
