package proof

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/queries"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
)

// Cmd is the proof command group
var Cmd = &cobra.Command{
	Use:   "proof",
	Short: "Completion proofs",
	Long:  `Completion proofs are URLs recorded on this machine when a task is completed.`,
}

var proofTask string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded proofs, newest first",
	Long: `List recorded proofs, newest first.

Examples:
  keepup proof list
  keepup proof list --task 3`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListProofsHandler == nil {
			return cli.ErrNotInitialized
		}

		var query queries.ListProofsQuery
		if proofTask != "" {
			id, err := domain.ParseTaskID(proofTask)
			if err != nil {
				return fmt.Errorf("invalid --task %q: %w", proofTask, err)
			}
			query.TaskID = &id
		}

		renderProofs(cmd.OutOrStdout(), app.ListProofsHandler.Handle(cmd.Context(), query))
		return nil
	},
}

func renderProofs(w io.Writer, proofs []queries.ProofDTO) {
	if len(proofs) == 0 {
		fmt.Fprintln(w, "No proofs recorded.")
		return
	}
	fmt.Fprintf(w, "Proofs (%d):\n", len(proofs))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, p := range proofs {
		fmt.Fprintf(w, "#%s  %s  %s\n", p.TaskID, p.Date, p.URL)
		if p.FileName != "" {
			fmt.Fprintf(w, "   File: %s\n", p.FileName)
		}
		if !p.Timestamp.IsZero() {
			fmt.Fprintf(w, "   Recorded: %s\n", p.Timestamp.UTC().Format(time.RFC3339))
		}
	}
}

func init() {
	listCmd.Flags().StringVar(&proofTask, "task", "", "only show proofs of this task")
	Cmd.AddCommand(listCmd)
}
