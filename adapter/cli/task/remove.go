package task

import (
	"fmt"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [task-id]",
	Short: "Remove a task",
	Long: `Remove a task from your board. The ledger keeps it as inactive; its
local category and proofs are deleted.

Examples:
  keepup task remove 3`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RemoveTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		id, err := domain.ParseTaskID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id %q: %w", args[0], err)
		}

		if _, err := app.Subject(ctx); err != nil {
			return cli.HandleError(out, "resolve wallet", err)
		}
		fmt.Fprintln(out, "Submitting transaction...")
		result, err := app.RemoveTaskHandler.Handle(ctx, commands.RemoveTaskCommand{TaskID: id})
		if err != nil {
			return cli.HandleError(out, "remove task", err)
		}

		fmt.Fprintf(out, "Task #%s removed\n", id)
		printTx(out, *result)
		return nil
	},
}
