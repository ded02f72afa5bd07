package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/coder-hombre/static-vines/pkg/cli"
	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/telemetry/logging"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "staticvines.yaml"

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	configPath string
	output     string
	logLevel   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "staticvines",
		Short: "Static Vines - per-category vine growth suppression",
		Long: `Static Vines vetoes natural vine growth per category: regular vines,
cave vine heads and segments, weeping vines, twisting vines and kelp.

Player placement is never blocked. Flags are read from a YAML file that can be
reloaded at runtime without restarting the host.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", DefaultConfigPath, "config file path")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")

	cmd.AddCommand(
		newRunCmd(opts),
		newValidateCmd(opts),
		newClassifyCmd(opts),
		newReplayCmd(opts),
		newBenchCmd(opts),
		newVersionCmd(opts),
		newCompletionCmd(cmd),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code. SIGINT
// and SIGTERM cancel the command context.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

// loadConfig loads the configuration file with environment overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(o.configPath)
	if err != nil {
		return nil, cli.WrapConfigError(o.configPath, err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section of cfg and
// the --log-level and --verbose flags. Logs always go to w, never stdout.
func (o *rootOptions) newLogger(cfg config.LoggingConfig, w io.Writer) (*logging.Logger, error) {
	lc := logging.FromConfig(cfg)
	if o.logLevel != "" {
		lc.Level = o.logLevel
	}
	if o.verbose {
		lc.Level = "debug"
	}
	lc.Writer = w
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// print writes data to the command's stdout in the --output format.
func (o *rootOptions) print(cmd *cobra.Command, data any) error {
	format, err := cli.ParseOutputFormat(o.output)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
