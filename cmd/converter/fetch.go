package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/records"
)

var fetchFlags struct {
	output string
}

// fetchSummary is the result printed by the fetch command.
type fetchSummary struct {
	Source    string        `json:"source"`
	Records   int           `json:"records"`
	Fields    []string      `json:"fields"`
	FetchedAt time.Time     `json:"fetched_at"`
	Duration  time.Duration `json:"duration_ns"`
}

func (s fetchSummary) String() string {
	return fmt.Sprintf("✓ Fetched %d records from %s in %s\nFields: %v",
		s.Records, s.Source, s.Duration.Round(time.Millisecond), s.Fields)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch records from the configured source",
	Long: `Fetch a record set from the configured source and print a summary.

This checks connectivity and decoding without rendering anything.

Examples:
  # Fetch from the source in config.yaml
  converter fetch

  # Fetch from a CSV file, JSON summary
  CONVERTER_SOURCE_TYPE=file CONVERTER_SOURCE_FILE_PATH=customers.csv converter fetch -o json`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchFlags.output, "output", "o", "text", "output format: text, json")
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(fetchFlags.output)
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

	start := time.Now()
	set, err := a.adapter.Fetch(ctx)
	if err != nil {
		return cli.NewCommandError("fetch", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), summarize(set, time.Since(start)))
}

func summarize(set records.RecordSet, duration time.Duration) fetchSummary {
	return fetchSummary{
		Source:    set.Source,
		Records:   set.Len(),
		Fields:    set.Headers(),
		FetchedAt: set.FetchedAt,
		Duration:  duration,
	}
}
