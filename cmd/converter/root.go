package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
)

const defaultConfigFile = "config.yaml"

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "Customer data preview and export",
	Long: `converter fetches customer records from a configured source, shows them as
a table and exports them as XLSX spreadsheets or paginated PDF documents.

Run the preview server with "converter run", or use the fetch, show and
export subcommands from scripts. Settings come from config.yaml, a .env file
and CONVERTER_SECTION_FIELD environment variables, in increasing priority.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command and exits with a code derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadEnvFile loads envFile into the process environment without overriding
// variables that are already set. A missing file is ignored.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cli.NewConfigError("", fmt.Sprintf("failed to load %s: %v", envFile, err))
	}
	return nil
}
