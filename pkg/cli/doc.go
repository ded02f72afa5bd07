/*
Package cli provides command-line interface utilities for the staticvines
command.

Output Formatting:

Commands print results as text, JSON, or YAML:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Results that implement Texter control their own text rendering.

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "events")
	progress.Start(total)
	progress.Update(done)
	progress.Finish()

Signal Handling:

SIGINT and SIGTERM cancel the run context; SIGHUP requests a configuration
reload:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	cli.OnReloadSignal(ctx, func() { _ = store.Reload() })

Exit Codes:

ExitCode maps a command error to 0, 1, or 2 (configuration errors).
*/
package cli
