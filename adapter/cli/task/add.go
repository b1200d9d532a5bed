package task

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
)

var addCategory string

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a daily task",
	Long: `Add a task to your KeepUp contract. This sends a transaction and waits
for it to confirm. The optional category is stored locally.

Examples:
  keepup task add "Morning run" --category fitness
  keepup task add Read 20 pages`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		command := commands.AddTaskCommand{Name: strings.Join(args, " ")}
		if addCategory != "" {
			category, err := domain.ParseCategory(addCategory)
			if err != nil {
				return fmt.Errorf("invalid --category %q: %w", addCategory, err)
			}
			command.Category = category
		}

		if _, err := app.Subject(ctx); err != nil {
			return cli.HandleError(out, "resolve wallet", err)
		}
		fmt.Fprintln(out, "Submitting transaction...")
		result, err := app.AddTaskHandler.Handle(ctx, command)
		if err != nil {
			return cli.HandleError(out, "add task", err)
		}

		fmt.Fprintf(out, "Task added: %s\n", strings.TrimSpace(command.Name))
		printTx(out, result.TxResult)
		switch {
		case result.Tagged:
			fmt.Fprintf(out, "   Category: %s (task #%s)\n", command.Category.Label(), result.TaskID)
		case command.Category != "":
			fmt.Fprintln(out, "   Category could not be applied; use 'keepup category set' once the task shows up.")
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addCategory, "category", "", "category (fitness, learning, health, work, personal, social)")
}
