package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/export"
)

var exportFlags struct {
	formats   []string
	outputDir string
	layout    string
	quiet     bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch records and export them to files",
	Long: `Fetch a record set and write it to the output directory in each requested
format. Files are named <prefix>_<YYYY-MM-DD>.<ext>, so a second export on
the same day replaces the first.

An empty record set produces no files and exits with code 3.

Examples:
  # Spreadsheet and document (default)
  converter export

  # Document only, rendered as a text table instead of a raster image
  converter export --format pdf --layout table

  # Everything into ./out
  converter export --format xlsx,pdf,csv,json,html --output-dir out`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportFlags.formats, "format", "f", []string{"xlsx", "pdf"},
		"export formats: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVarP(&exportFlags.outputDir, "output-dir", "d", "", "output directory (overrides export.output_dir)")
	exportCmd.Flags().StringVar(&exportFlags.layout, "layout", "", "pdf layout: raster, table (overrides export.pdf.layout)")
	exportCmd.Flags().BoolVarP(&exportFlags.quiet, "quiet", "q", false, "print only file paths")
}

func runExport(cmd *cobra.Command, args []string) error {
	for _, f := range exportFlags.formats {
		if !slices.Contains(export.Formats, f) {
			return fmt.Errorf("unsupported export format %q (supported: %s)", f, strings.Join(export.Formats, ", "))
		}
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if exportFlags.outputDir != "" {
		cfg.Export.OutputDir = exportFlags.outputDir
	}
	if exportFlags.layout != "" {
		cfg.Export.PDF.Layout = exportFlags.layout
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if _, err := a.adapter.Fetch(ctx); err != nil {
		return cli.NewCommandError("export", err)
	}

	out := cmd.OutOrStdout()
	var progress cli.ProgressReporter
	if !exportFlags.quiet {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "Exporting")
		progress.Start(int64(len(exportFlags.formats)))
	}

	lines := make([]string, 0, len(exportFlags.formats))
	for i, format := range exportFlags.formats {
		path, output, err := a.runner.ExportToDir(ctx, format, cfg.Export.OutputDir)
		if err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return cli.NewCommandError("export", err)
		}

		if exportFlags.quiet {
			lines = append(lines, path)
		} else {
			lines = append(lines, describeOutput(path, output))
		}
		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func describeOutput(path string, out *export.Output) string {
	detail := fmt.Sprintf("%d records, %d bytes", out.Records, out.Bytes)
	if out.Pages > 0 {
		detail = fmt.Sprintf("%d records, %d pages, %d bytes", out.Records, out.Pages, out.Bytes)
	}
	return fmt.Sprintf("✓ %s (%s)", path, detail)
}
