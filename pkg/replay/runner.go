package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/policy/engine/source"
	"github.com/coder-hombre/static-vines/pkg/telemetry/tracing"
	"github.com/coder-hombre/static-vines/pkg/vine"
	"github.com/coder-hombre/static-vines/pkg/world"
)

// ErrExpectationFailed is returned by Report.Err when at least one step's
// decision differed from its expectation.
var ErrExpectationFailed = errors.New("replay expectations failed")

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Index     int             `json:"index" yaml:"index"`
	Action    string          `json:"action" yaml:"action"`
	Kind      string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Pos       vine.Pos        `json:"pos" yaml:"pos"`
	BlockID   string          `json:"block_id,omitempty" yaml:"block_id,omitempty"`
	Category  string          `json:"category,omitempty" yaml:"category,omitempty"`
	Decision  string          `json:"decision,omitempty" yaml:"decision,omitempty"`
	Reason    string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Expected  string          `json:"expected,omitempty" yaml:"expected,omitempty"`
	Mismatch  bool            `json:"mismatch,omitempty" yaml:"mismatch,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
	Flags     map[string]bool `json:"flags,omitempty" yaml:"flags,omitempty"`
	Neighbors int             `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
}

// Summary totals a replay.
type Summary struct {
	Events     int `json:"events" yaml:"events"`
	Allowed    int `json:"allowed" yaml:"allowed"`
	Vetoed     int `json:"vetoed" yaml:"vetoed"`
	Faults     int `json:"faults" yaml:"faults"`
	Mismatches int `json:"mismatches" yaml:"mismatches"`
}

// Report is the result of replaying one scenario.
type Report struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Scenario string        `json:"scenario" yaml:"scenario"`
	World    string        `json:"world" yaml:"world"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Steps    []StepResult  `json:"steps" yaml:"steps"`
	Summary  Summary       `json:"summary" yaml:"summary"`
}

// Err returns ErrExpectationFailed when any expectation failed.
func (r *Report) Err() error {
	if r.Summary.Mismatches > 0 {
		return fmt.Errorf("%w: %d of %d events", ErrExpectationFailed, r.Summary.Mismatches, r.Summary.Events)
	}
	return nil
}

// Runner replays scenarios through a growth engine.
type Runner struct {
	config *engine.EngineConfig
	logger *slog.Logger
	tracer *tracing.Tracer
	now    func() time.Time
}

// NewRunner creates a runner. Each Run builds a fresh engine from cfg.
func NewRunner(cfg *engine.EngineConfig, logger *slog.Logger) *Runner {
	if cfg == nil {
		cfg = engine.DefaultEngineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		config: cfg,
		logger: logger.With("component", "replay"),
		now:    time.Now,
	}
}

// WithTracer records a span per run with a child span per event.
func (r *Runner) WithTracer(t *tracing.Tracer) *Runner {
	r.tracer = t
	return r
}

// Run replays sc. Step failures such as an unknown event kind or an out of
// bounds block change stop the run and are returned as errors; decision
// mismatches are only reported.
func (r *Runner) Run(ctx context.Context, sc *world.Scenario) (_ *Report, err error) {
	ctx, span := r.tracer.Start(ctx, "replay.run",
		trace.WithAttributes(attribute.String(tracing.AttrScenario, sc.Name)))
	defer func() { tracing.End(span, err) }()

	grid, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}

	flags, err := applyGrowth(policy.DefaultFlags(), sc.Growth)
	if err != nil {
		return nil, fmt.Errorf("growth: %w", err)
	}
	src := source.NewMemorySource(flags)

	eng, err := engine.New(r.config, src, r.logger)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    uuid.NewString(),
		Scenario: sc.Name,
		World:    grid.Name(),
		Started:  r.now(),
		Steps:    make([]StepResult, 0, len(sc.Steps)),
	}
	span.SetAttributes(
		attribute.String(tracing.AttrRunID, report.RunID),
		attribute.String(tracing.AttrWorld, report.World),
	)
	logger := r.logger.With("run_id", report.RunID, "scenario", sc.Name)
	logger.Info("replay started", "steps", len(sc.Steps), "blocks", grid.Len())

	start := time.Now()
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := StepResult{Index: i, Action: step.Action()}
		switch res.Action {
		case "growth":
			next, err := applyGrowth(src.Flags(), step.Growth)
			if err != nil {
				return report, fmt.Errorf("steps[%d]: %w", i, err)
			}
			src.Set(next)
			res.Flags = next.Named()
			logger.Debug("growth flags changed", "step", i, "flags", next.String())

		case "set":
			if err := step.Set.Apply(grid); err != nil {
				return report, fmt.Errorf("steps[%d]: %w", i, err)
			}
			res.Pos = step.Set.Pos
			res.BlockID = vine.NormalizeID(step.Set.Block)

		case "event":
			kind, err := engine.ParseEventKind(step.Event)
			if err != nil {
				return report, fmt.Errorf("steps[%d]: %w", i, err)
			}
			ev := engine.GrowthEvent{
				Kind:      kind,
				Pos:       step.Pos,
				World:     grid,
				WorldName: grid.Name(),
			}
			if step.Subject != "" {
				ev.Subject = vine.BlockID(vine.NormalizeID(step.Subject))
			}

			_, stepSpan := r.tracer.Start(ctx, "replay.event")
			v := eng.Evaluate(ev, src.Flags())
			res.Kind = kind.String()
			res.Pos = step.Pos
			res.BlockID = v.BlockID
			res.Category = v.Category.String()
			res.Decision = v.Decision.String()
			res.Reason = string(v.Reason)
			res.Neighbors = len(v.Neighbors)
			res.Expected = step.Expect
			if v.Err != nil {
				res.Error = v.Err.Error()
				report.Summary.Faults++
			}
			report.Summary.Events++
			if v.Decision == engine.Veto {
				report.Summary.Vetoed++
			} else {
				report.Summary.Allowed++
			}
			if step.Expect != "" && step.Expect != res.Decision {
				res.Mismatch = true
				report.Summary.Mismatches++
				logger.Warn("decision differs from expectation",
					"step", i,
					"kind", res.Kind,
					"pos", step.Pos.String(),
					"expected", step.Expect,
					"decision", res.Decision,
				)
			}
			stepSpan.SetAttributes(tracing.DecisionAttributes(res.Kind, res.BlockID, res.Category, res.Decision, res.Reason)...)
			stepSpan.SetAttributes(attribute.Bool("staticvines.replay.mismatch", res.Mismatch))
			tracing.End(stepSpan, v.Err)
		}
		report.Steps = append(report.Steps, res)
	}
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("staticvines.replay.events", report.Summary.Events),
		attribute.Int("staticvines.replay.mismatches", report.Summary.Mismatches),
	)
	logger.Info("replay finished",
		"events", report.Summary.Events,
		"vetoed", report.Summary.Vetoed,
		"mismatches", report.Summary.Mismatches,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

func applyGrowth(flags *policy.Flags, growth map[string]bool) (*policy.Flags, error) {
	for name, v := range growth {
		c, err := vine.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if flags, err = flags.With(c, v); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return flags, nil
}
