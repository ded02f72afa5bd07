package world

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

const caveScenario = `
name: cave vine swap
growth:
  cave_vine_segment: true
blocks:
  - pos: {x: 0, y: 64, z: 0}
    block: minecraft:cave_vines_plant
  - pos: {x: 5, y: 60, z: 5}
    to: {x: 6, y: 61, z: 6}
    block: minecraft:kelp_plant
steps:
  - event: feature_growth
    pos: {x: 0, y: 64, z: 0}
    expect: veto
  - growth: {cave_vine_segment: false}
  - set:
      pos: {x: 0, y: 63, z: 0}
      block: minecraft:cave_vines
  - event: neighbor_spread
    pos: {x: 0, y: 64, z: 0}
    subject: minecraft:cave_vines_plant
    expect: allow
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(caveScenario))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}
	if sc.World != "overworld" {
		t.Errorf("World = %q, want default overworld", sc.World)
	}
	if len(sc.Steps) != 4 {
		t.Fatalf("len(Steps) = %d, want 4", len(sc.Steps))
	}

	actions := []string{"event", "growth", "set", "event"}
	for i, want := range actions {
		if got := sc.Steps[i].Action(); got != want {
			t.Errorf("steps[%d].Action() = %q, want %q", i, got, want)
		}
	}

	g, err := sc.Build()
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 9 {
		t.Errorf("grid has %d blocks, want 9", g.Len())
	}
	if id, _ := g.Get(vine.Pos{Y: 64}); id != "minecraft:cave_vines_plant" {
		t.Errorf("block = %q", id)
	}
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty", "", "empty"},
		{"unknown key", "steps: []\ncolour: red\n", "colour"},
		{"no steps", "name: x\n", "at least one step"},
		{"two actions", "steps:\n  - event: feature_growth\n    growth: {kelp: true}\n", "exactly one"},
		{"bad expect", "steps:\n  - event: feature_growth\n    expect: maybe\n", "expect must be"},
		{"bad category", "growth: {moss: true}\nsteps:\n  - event: feature_growth\n", "moss"},
		{"unknown flag", "steps:\n  - growth: {unknown: false}\n", "unknown has no flag"},
		{"bad block", "blocks:\n  - pos: {x: 0, y: 0, z: 0}\n    block: 'a:b:c'\nsteps:\n  - event: x\n", "invalid block id"},
		{"bad bounds", "bounds: {min_y: 10, max_y: 0}\nsteps:\n  - event: x\n", "min_y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(caveScenario), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "cave vine swap" {
		t.Errorf("Name = %q", sc.Name)
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestScenario_BuildOutOfBounds(t *testing.T) {
	sc, err := ParseScenario([]byte("bounds: {min_y: 0, max_y: 10}\nblocks:\n  - pos: {x: 0, y: 20, z: 0}\n    block: minecraft:vine\nsteps:\n  - event: feature_growth\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Build(); err == nil || !strings.Contains(err.Error(), "blocks[0]") {
		t.Errorf("Build() error = %v, want blocks[0] out of bounds", err)
	}
}
