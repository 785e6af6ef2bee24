package main

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/render"
)

var historyFlags struct {
	limit  int
	output string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent exports",
	Long: `List recent export attempts, newest first.

History persists across runs only with the sqlite backend
(history.backend: sqlite).

Examples:
  converter history
  converter history --limit 5 -o json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.output)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := history.New(&cfg.History)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	entries, err := store.List(context.Background(), historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if format == cli.FormatJSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), entries)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), historyTable(entries))
}

// historyTable lays out entries for text and CSV output.
func historyTable(entries []history.Entry) render.Table {
	if len(entries) == 0 {
		return render.Table{}
	}

	t := render.Table{
		Headers: []string{"TIME", "FORMAT", "STATUS", "RECORDS", "PAGES", "BYTES", "FILE", "ERROR"},
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.Format,
			e.Status,
			strconv.Itoa(e.Records),
			strconv.Itoa(e.Pages),
			strconv.FormatInt(e.Bytes, 10),
			firstNonEmpty(e.Path, e.Filename),
			e.Error,
		})
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
