/*
Package cli provides helpers shared by the converter subcommands.

Output formatting renders command results as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return err
	}

Exporting several formats in one run reports progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr, "Exporting")
	progress.Start(int64(len(formats)))

Commands run under a context cancelled by SIGINT or SIGTERM:

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

ExitCode maps command errors to process exit codes, so scripts can tell an
empty export (3) from an unreachable source (4) or a busy holder (5).
*/
package cli
