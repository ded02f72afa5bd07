package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestClassifyCommand(t *testing.T) {
	out, _, err := executeCommand(t, context.Background(), "classify", "minecraft:cave_vines", "kelp_plant", "stone", "bad:id:x")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	for _, want := range []string{
		"minecraft:cave_vines",
		"cave_vine_head",
		"minecraft:kelp_plant",
		"minecraft:stone",
		"unknown",
		"bad:id:x (invalid)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClassifyCommand_RequiresArgs(t *testing.T) {
	if _, _, err := executeCommand(t, context.Background(), "classify"); err == nil {
		t.Fatal("expected error without block ids")
	}
}

func TestClassifyCommand_UseConfig(t *testing.T) {
	path := writeFile(t, "staticvines.yaml", `
growth:
  twisting_vine: false
  extra_blocks:
    examplemod:glow_vine: twisting_vine
`)

	out, _, err := executeCommand(t, context.Background(),
		"classify", "--config", path, "--use-config", "-o", "json",
		"examplemod:glow_vine", "weeping_vines", "dirt")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var got []classification
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}

	if got[0].Category != "twisting_vine" || got[0].Suppressed == nil || *got[0].Suppressed {
		t.Errorf("glow_vine = %+v, want twisting_vine with growth allowed", got[0])
	}
	if got[1].Category != "weeping_vine" || got[1].Suppressed == nil || !*got[1].Suppressed {
		t.Errorf("weeping_vines = %+v, want weeping_vine suppressed", got[1])
	}
	if got[2].Category != "unknown" || got[2].Suppressed != nil {
		t.Errorf("dirt = %+v, want unknown without a flag", got[2])
	}
}
