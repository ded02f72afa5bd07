package world

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// Scenario is a scripted sequence of growth events against a grid.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	World       string          `yaml:"world"`
	Bounds      *BoundsSpec     `yaml:"bounds,omitempty"`
	Growth      map[string]bool `yaml:"growth,omitempty"`
	Blocks      []BlockSpec     `yaml:"blocks,omitempty"`
	Steps       []Step          `yaml:"steps"`
}

// BoundsSpec overrides the default vertical build limits.
type BoundsSpec struct {
	MinY int `yaml:"min_y"`
	MaxY int `yaml:"max_y"`
}

// BlockSpec places a block, or fills a box when To is set.
type BlockSpec struct {
	Pos   vine.Pos  `yaml:"pos"`
	To    *vine.Pos `yaml:"to,omitempty"`
	Block string    `yaml:"block"`
}

// Step is exactly one of: a growth event, a block change, or a change to
// the growth flags.
type Step struct {
	// Event is an event kind name, e.g. "neighbor_spread".
	Event string `yaml:"event,omitempty"`

	// Pos is the event position.
	Pos vine.Pos `yaml:"pos,omitempty"`

	// Subject overrides the block read from the grid at Pos.
	Subject string `yaml:"subject,omitempty"`

	// Expect is the expected decision, "allow" or "veto". Empty means no
	// expectation.
	Expect string `yaml:"expect,omitempty"`

	// Set changes a block.
	Set *BlockSpec `yaml:"set,omitempty"`

	// Growth changes suppression flags; unnamed categories keep their value.
	Growth map[string]bool `yaml:"growth,omitempty"`
}

// Action names the kind of step.
func (s Step) Action() string {
	switch {
	case s.Event != "":
		return "event"
	case s.Set != nil:
		return "set"
	case len(s.Growth) > 0:
		return "growth"
	default:
		return ""
	}
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %q: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a scenario. Unknown keys are
// rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario is empty")
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	sc.Normalize()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Normalize fills defaults.
func (s *Scenario) Normalize() {
	if strings.TrimSpace(s.World) == "" {
		s.World = "overworld"
	}
	if s.Name == "" {
		s.Name = s.World
	}
}

// Validate checks the scenario structure. Event kind names are checked by
// the replay runner.
func (s *Scenario) Validate() error {
	var errs []error

	if s.Bounds != nil && s.Bounds.MinY > s.Bounds.MaxY {
		errs = append(errs, fmt.Errorf("bounds: min_y %d is above max_y %d", s.Bounds.MinY, s.Bounds.MaxY))
	}
	if err := validateGrowth("growth", s.Growth); err != nil {
		errs = append(errs, err)
	}
	for i, b := range s.Blocks {
		if vine.NormalizeID(b.Block) == "" {
			errs = append(errs, fmt.Errorf("blocks[%d]: invalid block id %q", i, b.Block))
		}
	}
	if len(s.Steps) == 0 {
		errs = append(errs, errors.New("steps: at least one step is required"))
	}
	for i, st := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		n := 0
		if st.Event != "" {
			n++
		}
		if st.Set != nil {
			n++
		}
		if len(st.Growth) > 0 {
			n++
		}
		if n != 1 {
			errs = append(errs, fmt.Errorf("%s: exactly one of event, set, growth is required", field))
			continue
		}
		switch {
		case st.Event != "":
			if st.Expect != "" && st.Expect != "allow" && st.Expect != "veto" {
				errs = append(errs, fmt.Errorf("%s: expect must be allow or veto, got %q", field, st.Expect))
			}
			if st.Subject != "" && vine.NormalizeID(st.Subject) == "" {
				errs = append(errs, fmt.Errorf("%s: invalid subject %q", field, st.Subject))
			}
		case st.Set != nil:
			if vine.NormalizeID(st.Set.Block) == "" {
				errs = append(errs, fmt.Errorf("%s: invalid block id %q", field, st.Set.Block))
			}
		default:
			if err := validateGrowth(field+".growth", st.Growth); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func validateGrowth(field string, growth map[string]bool) error {
	for name := range growth {
		c, err := vine.ParseCategory(name)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if c == vine.Unknown {
			return fmt.Errorf("%s: unknown has no flag", field)
		}
	}
	return nil
}

// Build creates the scenario's initial grid.
func (s *Scenario) Build() (*Grid, error) {
	minY, maxY := DefaultMinY, DefaultMaxY
	if s.Bounds != nil {
		minY, maxY = s.Bounds.MinY, s.Bounds.MaxY
	}
	g, err := NewGridWithBounds(s.World, minY, maxY)
	if err != nil {
		return nil, err
	}
	for i, b := range s.Blocks {
		if err := b.Apply(g); err != nil {
			return nil, fmt.Errorf("blocks[%d]: %w", i, err)
		}
	}
	return g, nil
}

// Apply writes the block or box to g.
func (b BlockSpec) Apply(g *Grid) error {
	if b.To == nil {
		return g.Set(b.Pos, b.Block)
	}
	_, err := g.Fill(b.Pos, *b.To, b.Block)
	return err
}
