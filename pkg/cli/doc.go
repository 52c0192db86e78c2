/*
Package cli provides helpers shared by the azrelay subcommands.

Output formatting for command results (text, JSON, YAML):

	format, err := cli.ParseFormat(outputFlag)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)

Graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

ExitCode maps command errors to process exit codes; configuration
problems exit with ExitConfig.
*/
package cli
