package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coder-hombre/static-vines/pkg/cli"
	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/policy/git"
	"github.com/coder-hombre/static-vines/pkg/policy/manager"
	"github.com/coder-hombre/static-vines/pkg/server"
	"github.com/coder-hombre/static-vines/pkg/telemetry/health"
	"github.com/coder-hombre/static-vines/pkg/telemetry/logging"
	"github.com/coder-hombre/static-vines/pkg/telemetry/metrics"
	"github.com/coder-hombre/static-vines/pkg/telemetry/tracing"
)

type runOptions struct {
	*rootOptions
	listenAddress string
	noAdmin       bool
	git           config.GitSourceConfig
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine host daemon",
		Long: `Load the configuration, publish the first snapshot and keep it current.

The daemon reloads the configuration when the file changes (reload.watch),
on the optional cron schedule (reload.resync_schedule) and on SIGHUP. When
admin.enabled is set it serves /health, /ready, /version, /snapshot, /stats
and, with telemetry.metrics.enabled, Prometheus metrics.

If the file cannot be loaded at startup every category is suppressed and
readiness reports degraded until a reload succeeds.

With --git-repo the configuration file is read from a clone of that
repository instead of --config. The branch is pulled every --git-poll and
the store reloads when a pull changes the file. A commit whose file fails
to load is reported on /ready while the previous snapshot stays in force.

Examples:
  # Start with the default config file
  staticvines run

  # Start with a custom config and admin address
  staticvines run --config /etc/staticvines.yaml --listen 127.0.0.1:9464

  # Follow a configuration repository
  staticvines run --git-repo https://git.example.com/ops/vines.git --git-file servers/survival.yaml`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override admin listen address")
	cmd.Flags().BoolVar(&opts.noAdmin, "no-admin", false, "do not start the admin server")
	cmd.Flags().StringVar(&opts.git.Repository, "git-repo", "", "read the configuration from this git repository")
	cmd.Flags().StringVar(&opts.git.Branch, "git-branch", config.DefaultGitBranch, "git branch to track")
	cmd.Flags().StringVar(&opts.git.File, "git-file", config.DefaultGitFile, "configuration file path inside the repository")
	cmd.Flags().DurationVar(&opts.git.PollInterval, "git-poll", config.DefaultGitPollInterval, "git poll interval")
	cmd.Flags().StringVar(&opts.git.LocalPath, "git-dir", "", "clone directory (default <tmp>/staticvines-config)")
	cmd.Flags().StringVar(&opts.git.Auth.Type, "git-auth", "none", "git auth type: none, token or ssh")
	cmd.Flags().StringVar(&opts.git.Auth.SSHKeyPath, "git-ssh-key", "", "private key for ssh auth")
	cmd.Flags().BoolVar(&opts.git.CleanOnStart, "git-clean", false, "remove the clone directory before cloning")
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command, args []string) error {
	var repo *git.Repository
	if o.git.Repository != "" {
		var err error
		if repo, err = o.cloneConfigRepo(cmd); err != nil {
			return err
		}
		o.configPath = repo.ConfigPath()
	}

	// The bootstrap config only configures telemetry and the admin server;
	// the store below owns the growth flags.
	bootstrap, bootErr := config.LoadConfigWithEnvOverrides(o.configPath)
	if bootErr != nil {
		bootstrap = config.Default()
	}
	if o.listenAddress != "" {
		bootstrap.Admin.ListenAddress = o.listenAddress
	}
	if o.noAdmin {
		bootstrap.Admin.Enabled = false
	}

	logger, err := o.newLogger(bootstrap.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = logger.With("config_path", o.configPath)
	if bootErr != nil {
		logger.Debug("using default telemetry and admin settings", "error", bootErr)
	}

	collector := metrics.NewCollector(&bootstrap.Telemetry.Metrics, nil)

	tracer, err := tracing.New(&bootstrap.Telemetry.Tracing, Version)
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

	store := manager.NewStore(o.configPath,
		manager.WithLogger(logger.Slog()),
		manager.WithRecorder(collector),
		manager.WithLoader(config.LoadConfigWithEnvOverrides),
		manager.WithTracer(tracer),
	)
	defer store.Close()

	if err := store.Load(); err != nil {
		var loadErr *manager.LoadError
		if !errors.As(err, &loadErr) || !loadErr.Defaulted {
			return cli.NewCommandError("run", err)
		}
	}

	ecfg, err := engineConfig(bootstrap)
	if err != nil {
		return err
	}
	eng, err := engine.New(ecfg.WithRecorder(collector), store, logger.Slog())
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	g, gctx := errgroup.WithContext(ctx)
	// Startup errors below return after goroutines have started; stop and
	// wait for them before the store is closed.
	defer func() {
		cancel()
		_ = g.Wait()
	}()

	g.Go(func() error {
		followLogLevel(gctx, store, logger)
		return nil
	})

	// The poller reloads after each pull that touches the file, so the
	// file watcher would only duplicate those reloads.
	watch := bootstrap.Reload.Watch && repo == nil

	var watching atomic.Bool
	if watch {
		g.Go(func() error {
			watching.Store(true)
			defer watching.Store(false)
			return store.Watch(gctx, bootstrap.Reload.Debounce)
		})
	}

	resync := manager.NewResyncScheduler(store, bootstrap.Reload.ResyncSchedule, logger.Slog())
	if err := resync.Start(gctx); err != nil {
		return cli.WrapConfigError("reload.resync_schedule", err)
	}
	defer resync.Stop()

	var poller *git.Poller
	if repo != nil {
		poller = git.NewPoller(repo, store, git.WithLogger(logger.Slog()), git.WithTracer(tracer))
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	hup := cli.OnReloadSignal(gctx, func() {
		logger.Info("reload requested by signal")
		if err := store.Reload(); err != nil {
			logger.Warn("reload failed, keeping previous snapshot", "error", err)
		}
	})

	if bootstrap.Admin.Enabled {
		checker := health.New(0)
		checker.RegisterCheck("config_snapshot", health.SnapshotCheck(store))
		if watch {
			checker.RegisterCheck("config_watcher", health.WatcherCheck(watching.Load))
		}
		if poller != nil {
			checker.RegisterCheck("config_git", health.GitCheck(poller))
		}

		deps := server.Dependencies{
			Snapshots: store,
			Engine:    eng,
			Checker:   checker,
			Tracer:    tracer,
			Version:   health.NewVersionInfo(Version, GitCommit, BuildDate),
			Logger:    logger.Slog(),
		}
		if collector.Enabled() {
			deps.Metrics = collector.Handler()
			deps.MetricsPath = bootstrap.Telemetry.Metrics.Path
		}

		srv, err := server.New(&bootstrap.Admin, deps)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		if err := srv.Listen(); err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Admin server listening on %s\n", srv.Addr())
		g.Go(func() error {
			return srv.Serve(gctx)
		})
	}

	snap := store.Current()
	logger.Info("static vines running",
		"version", Version,
		"generation", snap.Generation,
		"flags", snap.Flags.String(),
		"defaulted", snap.Defaulted,
		"watch", watch,
		"git", repo != nil,
		"tracing", tracer.Enabled(),
		"admin", bootstrap.Admin.Enabled,
	)

	<-gctx.Done()
	err = g.Wait()
	<-hup

	stats := eng.Stats()
	logger.Info("static vines stopped",
		"evaluated", stats.Evaluated,
		"vetoed", stats.Vetoed,
		"faults", stats.Faults,
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// cloneConfigRepo clones or reopens the configuration repository.
func (o *runOptions) cloneConfigRepo(cmd *cobra.Command) (*git.Repository, error) {
	o.git.ApplyDefaults()
	repo, err := git.NewRepository(&o.git)
	if err != nil {
		return nil, cli.WrapConfigError("--git-repo", err)
	}
	if err := repo.Clone(cmd.Context()); err != nil {
		return nil, cli.NewCommandError("run", err)
	}
	commit, err := repo.CurrentCommit()
	if err != nil {
		return nil, cli.NewCommandError("run", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Cloned %s@%s (%s)\n", o.git.Repository, o.git.Branch, commit.Short())
	return repo, nil
}

// followLogLevel applies the logging level of every published snapshot.
func followLogLevel(ctx context.Context, store *manager.Store, logger *logging.Logger) {
	updates, cancel := store.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.Config == nil || snap.Defaulted {
				continue
			}
			level := snap.Config.Telemetry.Logging.Level
			if err := logger.SetLevel(level); err != nil {
				logger.Warn("ignoring logging level from reloaded configuration", "level", level, "error", err)
			}
		}
	}
}
