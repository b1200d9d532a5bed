package task

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/keepup/adapter/cli/clitest"
	"github.com/felixgeelhaar/keepup/internal/habits/application/queries"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

func TestCommands_WithoutWallet(t *testing.T) {
	clitest.Setup(t, clitest.Config())

	tests := []struct {
		name string
		cmd  *cobra.Command
		args []string
	}{
		{"list", listCmd, nil},
		{"add", addCmd, []string{"Morning", "run"}},
		{"complete", completeCmd, []string{"1"}},
		{"remove", removeCmd, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.cmd, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "No wallet configured")
		})
	}
}

func TestCommands_WithoutSigner(t *testing.T) {
	cfg := clitest.Config()
	cfg.WalletAddress = "0x00000000000000000000000000000000000000a1"
	cfg.ContractAddress = "0x00000000000000000000000000000000000000c1"
	clitest.Setup(t, cfg)

	out, err := execute(t, removeCmd, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "needs a signing key")
}

func TestCommands_InvalidArguments(t *testing.T) {
	clitest.Setup(t, clitest.Config())

	t.Run("complete rejects a bad id", func(t *testing.T) {
		_, err := execute(t, completeCmd, "x")
		assert.ErrorIs(t, err, domain.ErrInvalidTaskID)
	})

	t.Run("remove rejects a bad id", func(t *testing.T) {
		_, err := execute(t, removeCmd, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTaskID)
	})

	t.Run("add rejects a bad category", func(t *testing.T) {
		addCategory = "chores"
		t.Cleanup(func() { addCategory = "" })
		_, err := execute(t, addCmd, "Stretch")
		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	})

	t.Run("list rejects a bad category", func(t *testing.T) {
		listCategory = "chores"
		t.Cleanup(func() { listCategory = "" })
		_, err := execute(t, listCmd)
		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	})
}

func TestRenderBoard(t *testing.T) {
	proof := domain.TaskProof{URL: "https://example.com/p", Timestamp: time.Now()}
	board := &queries.TaskBoardDTO{
		Day: domain.DayNumber(20000),
		Tasks: []queries.TaskDTO{
			{ID: "1", Name: "Run", Category: domain.CategoryFitness, CompletedToday: true, ProofToday: &proof, ProofCount: 3},
			{ID: "2", Name: "Read", Category: domain.CategoryUncategorized},
		},
		CompletedCount: 1,
		TotalCount:     2,
		Breakdown: []domain.CategoryStat{
			{Category: domain.CategoryFitness, Completed: 1, Total: 1},
			{Category: domain.CategoryUncategorized, Completed: 0, Total: 1},
		},
		StatusFailures: 1,
	}

	var buf bytes.Buffer
	renderBoard(&buf, board, "")
	out := buf.String()

	assert.Contains(t, out, "1/2 done")
	assert.Contains(t, out, "[x] #1 Run")
	assert.Contains(t, out, "[ ] #2 Read")
	assert.Contains(t, out, "Proof: https://example.com/p")
	assert.Contains(t, out, "Proofs recorded: 3")
	assert.Contains(t, out, "By category:")
	assert.Contains(t, out, "could not be read")

	t.Run("empty filtered board", func(t *testing.T) {
		var buf bytes.Buffer
		renderBoard(&buf, &queries.TaskBoardDTO{Day: 20000}, domain.CategoryWork)
		assert.Contains(t, buf.String(), "No "+domain.CategoryWork.Label()+" tasks.")
	})

	t.Run("empty board", func(t *testing.T) {
		var buf bytes.Buffer
		renderBoard(&buf, &queries.TaskBoardDTO{Day: 20000}, "")
		assert.Contains(t, buf.String(), "No tasks yet.")
	})
}
