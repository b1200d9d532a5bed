package commands

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// RemoveTaskCommand soft-deletes a task on the ledger and drops its local
// annotations.
type RemoveTaskCommand struct {
	TaskID domain.TaskID
}

// RemoveTaskHandler handles the RemoveTaskCommand.
type RemoveTaskHandler struct {
	submitter  *Submitter
	refresher  Refresher
	categories CategoryWriter
	proofs     ProofWriter
	locks      *InflightLocks
	logger     *slog.Logger
}

// NewRemoveTaskHandler creates a new RemoveTaskHandler.
func NewRemoveTaskHandler(submitter *Submitter, refresher Refresher, categories CategoryWriter, proofs ProofWriter, locks *InflightLocks, logger *slog.Logger) *RemoveTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoveTaskHandler{
		submitter:  submitter,
		refresher:  refresher,
		categories: categories,
		proofs:     proofs,
		locks:      locks,
		logger:     logger,
	}
}

// Handle executes the RemoveTaskCommand.
func (h *RemoveTaskHandler) Handle(ctx context.Context, cmd RemoveTaskCommand) (*TxResult, error) {
	subject, err := currentSubject(h.refresher)
	if err != nil {
		return nil, err
	}

	release, ok := h.locks.Acquire(LockKey{TaskID: cmd.TaskID.String(), Action: ActionRemove})
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	tx, err := h.submitter.Submit(ctx, subject, ActionRemove, cmd.TaskID.String(), func(ctx context.Context, w domain.LedgerWriter) (common.Hash, error) {
		return w.RemoveTask(ctx, cmd.TaskID)
	})
	if err != nil {
		return nil, err
	}

	if err := h.categories.Remove(ctx, cmd.TaskID); err != nil {
		h.logger.WarnContext(ctx, "failed to drop category of removed task", "task_id", cmd.TaskID.String(), "error", err)
	}
	if err := h.proofs.Remove(ctx, cmd.TaskID); err != nil {
		h.logger.WarnContext(ctx, "failed to drop proofs of removed task", "task_id", cmd.TaskID.String(), "error", err)
	}
	return tx, nil
}
