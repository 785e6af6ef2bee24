package main

import (
	"context"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/render"
)

var showFlags struct {
	output string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch records and print them as a table",
	Long: `Fetch a record set and print the same table the preview page shows.

Empty values print as the configured placeholder (export.placeholder).

Examples:
  converter show
  converter show -o csv > customers.csv`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(showFlags.output)
	if err != nil {
		return err
	}

	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	set, err := a.adapter.Fetch(ctx)
	if err != nil {
		return cli.NewCommandError("show", err)
	}

	table := render.Project(set, a.runner.Config().Placeholder)
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
}
