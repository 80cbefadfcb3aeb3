// Package cmd holds the ledger command line.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger",
		Short: "Trade and position ledger",
		Long: `Ledger records trades as positions and matches exits against open lots.

It provides tools for:
  - Replaying fills into a base, multi or live ledger
  - FIFO, LIFO, average cost and specific-id lot matching
  - Journaling closed positions and exposure to CSV or SQLite
  - Summarizing closed positions`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newReplayCmd(),
		newJournalCmd(),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
