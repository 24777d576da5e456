package main

import (
	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pagelingo",
	Short: "Visual document translation with model-drawn page redraws",
	Long: `Pagelingo translates scanned document pages by redrawing each page
image in the target language with a multimodal generation model.

The pipeline includes:
  - PDF ingestion into per-page images
  - Two-step extraction plus redraw, degrading to direct redraw on failure
  - Detached nine-dimension quality audits with retry feedback
  - Token usage and cost accounting per page and per model`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pagelingo/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "pagelingo home directory (default: ~/.pagelingo)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
