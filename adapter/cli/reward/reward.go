package reward

import (
	"github.com/spf13/cobra"
)

// Cmd is the reward command group
var Cmd = &cobra.Command{
	Use:   "reward",
	Short: "Streaks and rewards",
	Long:  `Show your streak, pending reward and claim history, and claim today's reward.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(claimCmd)
}
