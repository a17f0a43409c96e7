/*
Package cli provides helpers shared by the interviewer commands.

Errors:

ConfigError and CommandError tag failures so the entry point can choose an
exit code:

	if err := cmd.Execute(); err != nil {
	    fmt.Fprintln(os.Stderr, err)
	    os.Exit(cli.ExitCode(err))
	}

Output Formatting:

Commands that print records support text, JSON and CSV output:

	formatter, err := cli.NewFormatter(cli.OutputFormat(format))
	if err != nil {
	    return err
	}
	return formatter.FormatTo(os.Stdout, table)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.ShutdownContext(context.Background())
	defer stop()
*/
package cli
