package world

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// Air is the id of an empty cell.
const Air = "minecraft:air"

// MaxFillCells bounds a single Fill.
const MaxFillCells = 1 << 20

// Default vertical build limits, inclusive.
const (
	DefaultMinY = -64
	DefaultMaxY = 319
)

var (
	// ErrOutOfBounds is returned for positions outside the build limits.
	ErrOutOfBounds = errors.New("position out of world bounds")

	// ErrInvalidBlock is returned for malformed block ids.
	ErrInvalidBlock = errors.New("invalid block id")
)

// Grid is a sparse voxel grid keyed by position. Only non-air cells are
// stored. It is safe for concurrent use.
type Grid struct {
	name string
	minY int
	maxY int

	mu     sync.RWMutex
	blocks map[vine.Pos]string
}

// NewGrid creates an empty grid with the default build limits.
func NewGrid(name string) *Grid {
	g, _ := NewGridWithBounds(name, DefaultMinY, DefaultMaxY)
	return g
}

// NewGridWithBounds creates an empty grid with inclusive vertical limits.
func NewGridWithBounds(name string, minY, maxY int) (*Grid, error) {
	if minY > maxY {
		return nil, fmt.Errorf("min_y %d is above max_y %d", minY, maxY)
	}
	return &Grid{
		name:   name,
		minY:   minY,
		maxY:   maxY,
		blocks: make(map[vine.Pos]string),
	}, nil
}

// Name returns the world name.
func (g *Grid) Name() string { return g.name }

// Bounds returns the inclusive vertical limits.
func (g *Grid) Bounds() (minY, maxY int) { return g.minY, g.maxY }

// InBounds reports whether p is inside the vertical limits.
func (g *Grid) InBounds(p vine.Pos) bool {
	return p.Y >= g.minY && p.Y <= g.maxY
}

// Set places id at p. Setting air clears the cell.
func (g *Grid) Set(p vine.Pos, id string) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	norm := vine.NormalizeID(id)
	if norm == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBlock, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if norm == Air {
		delete(g.blocks, p)
		return nil
	}
	g.blocks[p] = norm
	return nil
}

// Clear sets p to air.
func (g *Grid) Clear(p vine.Pos) error {
	return g.Set(p, Air)
}

// Get returns the block id at p.
func (g *Grid) Get(p vine.Pos) (string, error) {
	if !g.InBounds(p) {
		return "", fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id, ok := g.blocks[p]; ok {
		return id, nil
	}
	return Air, nil
}

// BlockAt returns the identity of the block at p.
func (g *Grid) BlockAt(p vine.Pos) (vine.Identity, error) {
	id, err := g.Get(p)
	if err != nil {
		return nil, err
	}
	return vine.BlockID(id), nil
}

// Fill sets every cell in the box spanned by a and b (inclusive) to id and
// returns the number of cells written.
func (g *Grid) Fill(a, b vine.Pos, id string) (int, error) {
	lo := vine.Pos{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
	hi := vine.Pos{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
	if !g.InBounds(lo) || !g.InBounds(hi) {
		return 0, fmt.Errorf("%w: fill %s..%s", ErrOutOfBounds, lo, hi)
	}
	sx, sy, sz := fillSpan(lo.X, hi.X), fillSpan(lo.Y, hi.Y), fillSpan(lo.Z, hi.Z)
	// Each span is checked first so the product cannot overflow.
	if sx > MaxFillCells || sy > MaxFillCells || sz > MaxFillCells || sx*sy*sz > MaxFillCells {
		return 0, fmt.Errorf("fill %s..%s exceeds the limit of %d cells", lo, hi, MaxFillCells)
	}

	n := 0
	for dx := range int(sx) {
		for dy := range int(sy) {
			for dz := range int(sz) {
				if err := g.Set(vine.Pos{X: lo.X + dx, Y: lo.Y + dy, Z: lo.Z + dz}, id); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	return n, nil
}

// fillSpan returns the inclusive cell count from lo to hi. It saturates
// instead of wrapping when the range covers every int.
func fillSpan(lo, hi int) uint64 {
	d := uint64(hi) - uint64(lo)
	if d == math.MaxUint64 {
		return d
	}
	return d + 1
}

// Hang places a hanging plant below top: length-1 body blocks followed by
// one head block at the bottom. Weeping vines and cave vines grow this way.
func (g *Grid) Hang(top vine.Pos, length int, bodyID, headID string) error {
	if length <= 0 {
		return fmt.Errorf("hang length must be positive, got %d", length)
	}
	p := top
	for i := 0; i < length-1; i++ {
		if err := g.Set(p, bodyID); err != nil {
			return err
		}
		p = p.Offset(vine.Down)
	}
	return g.Set(p, headID)
}

// Len returns the number of non-air cells.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.blocks)
}

// Positions returns every non-air position, ordered by Y, then X, then Z.
func (g *Grid) Positions() []vine.Pos {
	g.mu.RLock()
	out := make([]vine.Pos, 0, len(g.blocks))
	for p := range g.blocks {
		out = append(out, p)
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return out
}

// Count returns the number of cells holding id.
func (g *Grid) Count(id string) int {
	norm := vine.NormalizeID(id)
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, b := range g.blocks {
		if b == norm {
			n++
		}
	}
	return n
}
