package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the ledgerctl CLI.
var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "NL Jewellers ledger tools",
	Long: `ledgerctl works against the same sheet and local mirror as the API
server. It reads SHEET_URL and the other settings from the environment
or a .env file in the current directory.`,
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
