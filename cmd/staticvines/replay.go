package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coder-hombre/static-vines/pkg/cli"
	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/replay"
	"github.com/coder-hombre/static-vines/pkg/telemetry/tracing"
	"github.com/coder-hombre/static-vines/pkg/world"
)

type replayOptions struct {
	*rootOptions
	scenarios []string
	useConfig bool
	progress  bool
}

type replayResult []*replay.Report

func (r replayResult) Text() string {
	parts := make([]string, 0, len(r))
	for _, rep := range r {
		parts = append(parts, rep.Text())
	}
	return strings.Join(parts, "\n")
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	opts := &replayOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "replay [scenario.yaml...]",
		Short: "Replay scripted growth events against an in-memory world",
		Long: `Replay builds an in-memory world from a scenario file, sends each scripted
event through a fresh growth engine and compares the decisions with the
scenario's expectations.

A scenario lists initial blocks, optional growth flags, and steps. Each step
is one of: an event (with an optional expected decision), a block change, or a
change to the growth flags.

Exits non-zero when any expectation fails.

Examples:
  staticvines replay --scenario testdata/cave.yaml
  staticvines replay testdata/*.yaml -o json`,
		RunE: opts.run,
	}

	cmd.Flags().StringArrayVarP(&opts.scenarios, "scenario", "s", nil, "scenario file (repeatable)")
	cmd.Flags().BoolVar(&opts.useConfig, "use-config", false, "use diagnostics and extra blocks from the configuration file")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "report progress on stderr")
	return cmd
}

// engineConfig builds the engine configuration shared by replay and bench.
func engineConfig(cfg *config.Config) (*engine.EngineConfig, error) {
	classifier, err := cfg.Classifier()
	if err != nil {
		return nil, cli.WrapConfigError("growth.extra_blocks", err)
	}
	return engine.DefaultEngineConfig().
		WithNeighborScan(cfg.Diagnostics.NeighborScan).
		WithLogDecisions(cfg.Diagnostics.LogDecisions).
		WithSlowEvaluationThreshold(cfg.Diagnostics.SlowEvaluationThreshold).
		WithClassifier(classifier), nil
}

func (o *replayOptions) run(cmd *cobra.Command, args []string) error {
	paths := append(append([]string(nil), o.scenarios...), args...)
	if len(paths) == 0 {
		return errors.New("no scenario given: use --scenario or pass files as arguments")
	}

	cfg := config.Default()
	ecfg := engine.DefaultEngineConfig()
	if o.useConfig {
		var err error
		if cfg, err = o.loadConfig(); err != nil {
			return err
		}
		if ecfg, err = engineConfig(cfg); err != nil {
			return err
		}
	}
	logger, err := o.newLogger(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var progress cli.ProgressReporter = cli.NopProgress{}
	if o.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "scenarios")
	}
	progress.Start(int64(len(paths)))

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.WrapConfigError("telemetry.tracing", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	runner := replay.NewRunner(ecfg, logger.Slog()).WithTracer(tracer)
	reports := make(replayResult, 0, len(paths))
	var failed []error
	for i, path := range paths {
		sc, err := world.LoadScenario(path)
		if err != nil {
			progress.Error(err)
			return cli.NewCommandError("replay", err)
		}
		report, err := runner.Run(cmd.Context(), sc)
		if err != nil {
			progress.Error(err)
			return cli.NewCommandError("replay", err)
		}
		if err := report.Err(); err != nil {
			failed = append(failed, err)
		}
		reports = append(reports, report)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	if err := o.print(cmd, reports); err != nil {
		return err
	}
	if len(failed) > 0 {
		return cli.NewCommandError("replay", errors.Join(failed...))
	}
	return nil
}
