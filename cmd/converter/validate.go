package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/source"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration (file, .env and environment overrides) and report
every invalid field. Nothing is fetched or exported.

Examples:
  converter validate
  converter validate --config /etc/converter/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, path, err := loadConfig(cmd)
	if err != nil {
		for _, cfgErr := range cli.ConfigErrors(err) {
			fmt.Fprintf(out, "✗ %s\n", cfgErr.Error())
		}
		return err
	}

	if path == "" {
		fmt.Fprintln(out, "✓ Configuration valid (defaults and environment, no file)")
	} else {
		fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
	}

	if _, err := source.Get(cfg.Source.Type); err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
		return cli.NewConfigError("source.type", err.Error())
	}

	fmt.Fprintf(out, "  Source:  %s\n", cfg.Source.Type)
	fmt.Fprintf(out, "  Listen:  %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "  Export:  %s (pdf layout %s)\n", cfg.Export.OutputDir, cfg.Export.PDF.Layout)
	if cfg.History.Enabled {
		fmt.Fprintf(out, "  History: %s\n", cfg.History.Backend)
	} else {
		fmt.Fprintln(out, "  History: disabled")
	}
	if cfg.Secrets.Dir != "" {
		fmt.Fprintf(out, "  Secrets: env %s*, dir %s\n", cfg.Secrets.EnvPrefix, cfg.Secrets.Dir)
	} else {
		fmt.Fprintf(out, "  Secrets: env %s*\n", cfg.Secrets.EnvPrefix)
	}
	return nil
}
