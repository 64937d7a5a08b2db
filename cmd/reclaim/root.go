package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Reclaim packaging waste summary log tooling",
	Long: `Reclaim ingests packaging waste summary logs: marker-based spreadsheet
scanning, metadata and row validation, and validation against registration
details. The validate command runs the checks locally against a workbook
without touching a database.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
