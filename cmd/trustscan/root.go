// Package main provides the entry point for the trustscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for trustscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trustscan",
		Short: "Media authenticity analysis with calibrated trust scores",
		Long: `trustscan analyzes media files for authenticity. It fuses individually
weak signals (visual artifacts, audio spectrum, temporal consistency)
into one quality-calibrated trust score, with a decision and the
reasoning behind it.

Low-quality inputs dampen the verdict toward "ambiguous" rather than
producing confident guesses. Use --robustness to also measure how
stable the score is under synthetic degradations.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
