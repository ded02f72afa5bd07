package source

import (
	"sync/atomic"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
)

var _ engine.FlagSource = (*MemorySource)(nil)

// MemorySource is an in-memory flag source. Set publishes a new snapshot
// atomically; readers never block.
type MemorySource struct {
	flags atomic.Pointer[policy.Flags]
	swaps atomic.Uint64
}

// NewMemorySource creates a source holding flags. A nil flags value means
// no snapshot is published yet.
func NewMemorySource(flags *policy.Flags) *MemorySource {
	s := &MemorySource{}
	if flags != nil {
		s.flags.Store(flags)
	}
	return s
}

// Flags returns the current snapshot.
func (s *MemorySource) Flags() *policy.Flags {
	return s.flags.Load()
}

// Set replaces the current snapshot.
func (s *MemorySource) Set(flags *policy.Flags) {
	s.flags.Store(flags)
	s.swaps.Add(1)
}

// Swaps returns how many times Set has been called.
func (s *MemorySource) Swaps() uint64 {
	return s.swaps.Load()
}
