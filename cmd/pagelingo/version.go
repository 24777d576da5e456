package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pagelingo %s\n", version.GitRelease)
		if version.GitCommit != "" {
			fmt.Printf("  Commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Printf("  Date:   %s\n", version.BuildDate)
		}
	},
}
