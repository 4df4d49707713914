// Command cli is the operator-facing command line for the storage network:
// signing and verifying events, verifying receipts, and driving settlement
// against the on-disk stores used by the gateway, coordinator and mint.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "synnergy-storage"}

func main() {
	rootCmd.AddCommand(eventCmd, receiptCmd, epochCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
