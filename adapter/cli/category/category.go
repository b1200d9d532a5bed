package category

import (
	"fmt"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
)

// Cmd is the category command group
var Cmd = &cobra.Command{
	Use:   "category",
	Short: "Tag tasks with local categories",
	Long: `Categories are stored on this machine only and never sent to the ledger.

Available categories: fitness, learning, health, work, personal, social.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, c := range domain.AllCategories() {
			fmt.Fprintf(out, "%-10s %s\n", c, c.Label())
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set [task-id] [category]",
	Short: "Tag a task",
	Long: `Tag a task with a category. Tagging with "uncategorized" clears the tag.

Examples:
  keepup category set 3 fitness`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetCategoryHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()

		id, err := domain.ParseTaskID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id %q: %w", args[0], err)
		}
		category, err := cli.ParseCategoryFilter(args[1])
		if err != nil || category == "" {
			return fmt.Errorf("invalid category %q: %w", args[1], domain.ErrInvalidCategory)
		}

		if err := app.SetCategoryHandler.Handle(cmd.Context(), commands.SetCategoryCommand{TaskID: id, Category: category}); err != nil {
			return cli.HandleError(out, "set category", err)
		}
		if category == domain.CategoryUncategorized {
			fmt.Fprintf(out, "Task #%s is now uncategorized\n", id)
			return nil
		}
		fmt.Fprintf(out, "Task #%s tagged %s\n", id, category.Label())
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear [task-id]",
	Short: "Remove a task's tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetCategoryHandler == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()

		id, err := domain.ParseTaskID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id %q: %w", args[0], err)
		}
		if err := app.SetCategoryHandler.Clear(cmd.Context(), commands.ClearCategoryCommand{TaskID: id}); err != nil {
			return cli.HandleError(out, "clear category", err)
		}
		fmt.Fprintf(out, "Task #%s is now uncategorized\n", id)
		return nil
	},
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(clearCmd)
}
