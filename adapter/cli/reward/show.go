package reward

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/queries"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	showFresh    bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show streak, pending reward and history",
	Long: `Show the current and longest streak, the bonus for the current streak,
what a claim would pay today and past claims, newest first.

Examples:
  keepup reward show
  keepup reward show --history 5`,
	Aliases: []string{"status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetRewardsSummaryHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		if _, err := app.Subject(ctx); err != nil {
			return cli.HandleError(out, "resolve wallet", err)
		}
		summary, err := app.GetRewardsSummaryHandler.Handle(ctx, queries.GetRewardsSummaryQuery{
			Fresh:        showFresh,
			HistoryLimit: historyLimit,
		})
		if err != nil {
			return cli.HandleError(out, "load rewards", err)
		}

		renderSummary(out, summary)
		return nil
	},
}

func renderSummary(w io.Writer, s *queries.RewardsSummaryDTO) {
	fmt.Fprintf(w, "Streak: %d day(s) (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	fmt.Fprintf(w, "Bonus:  +%d%%\n", s.BonusPercent)
	fmt.Fprintf(w, "Daily reward: %s\n", services.FormatEther(s.DailyReward))

	switch {
	case s.ClaimedToday:
		fmt.Fprintln(w, "Today: claimed")
	case s.ClaimAvailable:
		fmt.Fprintf(w, "Today: %s claimable (run 'keepup reward claim')\n", services.FormatEther(s.Pending))
	default:
		fmt.Fprintln(w, "Today: nothing to claim yet")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Lifetime rewards: %s\n", services.FormatEther(s.LifetimeTotal))
	if len(s.History) == 0 {
		fmt.Fprintln(w, "No claims yet.")
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, c := range s.History {
		fmt.Fprintf(w, "%s  %s  streak %d\n", c.Date, services.FormatEther(c.Amount), c.StreakAtClaim)
		if cli.Verbose() && c.TransactionID != "" {
			fmt.Fprintf(w, "   Transaction: %s\n", c.TransactionID)
		}
	}
}

func init() {
	showCmd.Flags().IntVarP(&historyLimit, "history", "n", 10, "max number of past claims to show (0 = all)")
	showCmd.Flags().BoolVar(&showFresh, "fresh", false, "re-read the ledger instead of using the cached snapshot")
}
