package task

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
)

var (
	proofURL  string
	proofFile string
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as done for today",
	Long: `Mark a task as completed for today. This sends a transaction and waits
for it to confirm. A proof URL, when given, is recorded locally for today.

Examples:
  keepup task complete 3
  keepup task complete 3 --proof-url https://gateway.pinata.cloud/ipfs/Qm... --proof-file run.jpg`,
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteTaskHandler == nil {
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
		result, err := app.CompleteTaskHandler.Handle(ctx, commands.CompleteTaskCommand{
			TaskID:    id,
			ProofURL:  proofURL,
			ProofFile: proofFile,
		})
		if err != nil {
			return cli.HandleError(out, "complete task", err)
		}

		fmt.Fprintf(out, "Task #%s completed for today\n", id)
		printTx(out, result.TxResult)
		if proofURL != "" && !result.ProofRecorded {
			fmt.Fprintln(out, "   Proof could not be recorded locally.")
		}
		if snap := result.Snapshot; snap != nil && snap.Board != nil {
			fmt.Fprintf(out, "   Today: %d/%d done\n", snap.Board.CompletedCount(), len(snap.Board.ActiveTasks))
		}
		return nil
	},
}

// printTx prints the transaction id and, when the refresh after it failed, a hint.
func printTx(w io.Writer, tx commands.TxResult) {
	fmt.Fprintf(w, "   Transaction: %s\n", tx.TransactionID.Hex())
	if tx.Receipt != nil {
		fmt.Fprintf(w, "   Block: %d\n", tx.Receipt.BlockNumber)
	}
	if tx.Snapshot == nil {
		fmt.Fprintln(w, "   Ledger view not refreshed yet; run 'keepup task list --fresh'.")
	}
}

func init() {
	completeCmd.Flags().StringVar(&proofURL, "proof-url", "", "URL of an already uploaded proof")
	completeCmd.Flags().StringVar(&proofFile, "proof-file", "", "original file name of the proof")
}
