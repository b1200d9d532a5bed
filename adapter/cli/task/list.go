package task

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/queries"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
)

var (
	listCategory string
	listFresh    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show today's task board",
	Long: `Show today's active tasks with their completion state, category and
proof, followed by the per-category breakdown.

Examples:
  keepup task list
  keepup task list --category fitness
  keepup task list --category uncategorized
  keepup task list --fresh`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskBoardHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		category, err := cli.ParseCategoryFilter(listCategory)
		if err != nil {
			return fmt.Errorf("invalid --category %q: %w", listCategory, err)
		}
		query := queries.GetTaskBoardQuery{Category: category, Fresh: listFresh}

		if _, err := app.Subject(ctx); err != nil {
			return cli.HandleError(out, "resolve wallet", err)
		}
		board, err := app.GetTaskBoardHandler.Handle(ctx, query)
		if err != nil {
			return cli.HandleError(out, "load task board", err)
		}

		renderBoard(out, board, query.Category)
		return nil
	},
}

func renderBoard(w io.Writer, board *queries.TaskBoardDTO, filter domain.Category) {
	fmt.Fprintf(w, "Today (%s): %d/%d done\n", board.Day.DateKey(), board.CompletedCount, board.TotalCount)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	if len(board.Tasks) == 0 {
		if filter != "" {
			fmt.Fprintf(w, "No %s tasks.\n", filter.Label())
		} else {
			fmt.Fprintln(w, "No tasks yet. Add one with 'keepup task add'.")
		}
	}
	for _, t := range board.Tasks {
		fmt.Fprintf(w, "%s #%s %s (%s)\n", statusIcon(t.CompletedToday), t.ID, t.Name, t.Category.Label())
		if t.ProofToday != nil {
			fmt.Fprintf(w, "   Proof: %s\n", t.ProofToday.URL)
		}
		if t.ProofCount > 1 {
			fmt.Fprintf(w, "   Proofs recorded: %d\n", t.ProofCount)
		}
	}

	if len(board.Breakdown) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By category:")
		for _, stat := range board.Breakdown {
			fmt.Fprintf(w, "  %-14s %d/%d\n", stat.Category.Label(), stat.Completed, stat.Total)
		}
	}
	if board.StatusFailures > 0 {
		fmt.Fprintf(w, "\nWarning: status of %d task(s) could not be read and is shown as open.\n", board.StatusFailures)
	}
}

func statusIcon(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "show only tasks of this category (or uncategorized)")
	listCmd.Flags().BoolVar(&listFresh, "fresh", false, "re-read the ledger instead of using the cached snapshot")
}
