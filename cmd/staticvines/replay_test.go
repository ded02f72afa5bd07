package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/coder-hombre/static-vines/pkg/cli"
	"github.com/coder-hombre/static-vines/pkg/replay"
)

const kelpScenario = `
name: kelp-forest
growth:
  kelp: false
blocks:
  - pos: {x: 0, y: 40, z: 0}
    to: {x: 0, y: 44, z: 0}
    block: minecraft:kelp_plant
  - pos: {x: 0, y: 45, z: 0}
    block: minecraft:kelp
steps:
  - event: feature_growth
    pos: {x: 0, y: 45, z: 0}
    expect: allow
  - growth:
      kelp: true
  - event: feature_growth
    pos: {x: 0, y: 45, z: 0}
    expect: veto
`

func TestReplayCommand(t *testing.T) {
	path := writeFile(t, "kelp.yaml", kelpScenario)

	out, _, err := executeCommand(t, context.Background(), "replay", "--scenario", path, "--log-level", "error")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !strings.Contains(out, "scenario kelp-forest") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "2 events: 1 allowed, 1 vetoed, 0 faults, 0 mismatches") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestReplayCommand_JSONWithPositionalArgs(t *testing.T) {
	a := writeFile(t, "a.yaml", kelpScenario)
	b := writeFile(t, "b.yaml", strings.Replace(kelpScenario, "kelp-forest", "second", 1))

	out, stderr, err := executeCommand(t, context.Background(), "replay", a, b, "-o", "json", "--progress", "--log-level", "error")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	var reports []replay.Report
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(reports) != 2 || reports[1].Scenario != "second" {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	if stderr == "" {
		t.Error("expected progress on stderr")
	}
}

func TestReplayCommand_Mismatch(t *testing.T) {
	path := writeFile(t, "wrong.yaml", strings.Replace(kelpScenario, "expect: veto", "expect: allow", 1))

	out, _, err := executeCommand(t, context.Background(), "replay", path, "--log-level", "error")
	if err == nil {
		t.Fatal("expected failure on mismatch")
	}
	if cli.ExitCode(err) != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", cli.ExitCode(err), cli.ExitFailure)
	}
	if !strings.Contains(out, "1 mismatches") {
		t.Errorf("report should still be printed:\n%s", out)
	}
}

func TestReplayCommand_NoScenario(t *testing.T) {
	if _, _, err := executeCommand(t, context.Background(), "replay"); err == nil {
		t.Fatal("expected error without scenarios")
	}
}

func TestBenchCommand(t *testing.T) {
	out, _, err := executeCommand(t, context.Background(),
		"bench", "--worlds", "2", "--workers", "2", "--events", "300", "--reload-interval", "100us",
		"-o", "json", "--log-level", "error")
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}

	var res replay.BenchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Events != 1200 {
		t.Errorf("Events = %d, want 1200", res.Events)
	}
	if res.Inconsistent != 0 {
		t.Errorf("Inconsistent = %d", res.Inconsistent)
	}
}
