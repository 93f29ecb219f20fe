// Command restakingd is a standalone exerciser for the four coordination
// keepers, wired against in-memory test doubles (testutil). It exists to
// drive the engine end-to-end from a shell, without needing a consensus
// layer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd assembles the restakingd command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use: "restakingd",
		Short: "Exercise the restaking coordination engine against an in-memory deployment",
	}
	root.AddCommand(
		newDepositCmd(),
		newDelegateCmd(),
		newQueueWithdrawalCmd(),
		newSlashCmd(),
		newRewardsCmd())
	return root
}

