package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/coder-hombre/static-vines/pkg/cli"
	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/policy/engine/source"
	"github.com/coder-hombre/static-vines/pkg/replay"
)

type benchOptions struct {
	*rootOptions
	bench     replay.BenchConfig
	timeout   time.Duration
	useConfig bool
}

func newBenchCmd(root *rootOptions) *cobra.Command {
	opts := &benchOptions{rootOptions: root, bench: replay.DefaultBenchConfig()}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load test the growth engine",
		Long: `Drive one growth engine from several goroutines across independent in-memory
worlds while a reloader keeps swapping the suppression flags.

Every decision is checked against the flags the engine read for it; any
disagreement is reported as an inconsistency and fails the command.

Examples:
  # Default smoke run
  staticvines bench

  # Heavier run with frequent reloads
  staticvines bench --worlds 8 --workers 4 --events 200000 --reload-interval 100us`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	f := cmd.Flags()
	f.IntVar(&opts.bench.Worlds, "worlds", opts.bench.Worlds, "number of in-memory worlds")
	f.IntVar(&opts.bench.WorkersPerWorld, "workers", opts.bench.WorkersPerWorld, "goroutines per world")
	f.IntVar(&opts.bench.EventsPerWorker, "events", opts.bench.EventsPerWorker, "events per goroutine")
	f.DurationVar(&opts.bench.ReloadInterval, "reload-interval", opts.bench.ReloadInterval, "flag swap interval (0 disables reloads)")
	f.Uint64Var(&opts.bench.Seed, "seed", opts.bench.Seed, "random seed")
	f.DurationVar(&opts.timeout, "timeout", 0, "abort after this long (0 means no limit)")
	f.BoolVar(&opts.useConfig, "use-config", false, "start from the flags and extra blocks in the configuration file")
	return cmd
}

func (o *benchOptions) run(cmd *cobra.Command, args []string) error {
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
	// No per-evaluation logging under load.
	ecfg.WithSlowEvaluationThreshold(0).WithLogDecisions(false)

	logger, err := o.newLogger(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	flags, err := cfg.Flags()
	if err != nil {
		return cli.WrapConfigError(o.configPath, err)
	}

	src := source.NewMemorySource(flags)
	eng, err := engine.New(ecfg, src, logger.Slog())
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	ctx := cmd.Context()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	res, err := replay.Bench(ctx, eng, src, o.bench, logger.Slog())
	if res != nil {
		if perr := o.print(cmd, res); perr != nil {
			return perr
		}
	}
	if err != nil {
		return cli.NewCommandError("bench", err)
	}
	return nil
}
