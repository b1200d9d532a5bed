package reward

import (
	"fmt"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/spf13/cobra"
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim today's reward",
	Long: `Claim today's reward once every active task is complete. This sends a
transaction and waits for it to confirm.

Examples:
  keepup reward claim`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ClaimRewardHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		if _, err := app.Subject(ctx); err != nil {
			return cli.HandleError(out, "resolve wallet", err)
		}
		fmt.Fprintln(out, "Submitting transaction...")
		result, err := app.ClaimRewardHandler.Handle(ctx, commands.ClaimRewardCommand{})
		if err != nil {
			return cli.HandleError(out, "claim reward", err)
		}

		fmt.Fprintf(out, "Claimed %s\n", services.FormatEther(result.Expected))
		fmt.Fprintf(out, "   Transaction: %s\n", result.TransactionID.Hex())
		if snap := result.Snapshot; snap != nil {
			fmt.Fprintf(out, "   Streak: %d day(s)\n", snap.Streak.CurrentStreak)
		}
		return nil
	},
}
