package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// CompleteTaskCommand marks a task completed for today. ProofURL, when set,
// is recorded locally against today's date after confirmation.
type CompleteTaskCommand struct {
	TaskID    domain.TaskID
	ProofURL  string
	ProofFile string
}

// CompleteTaskResult contains the result of completing a task.
type CompleteTaskResult struct {
	TxResult
	ProofRecorded bool
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	submitter *Submitter
	refresher Refresher
	proofs    ProofWriter
	locks     *InflightLocks
	clock     domain.Clock
	logger    *slog.Logger
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(submitter *Submitter, refresher Refresher, proofs ProofWriter, locks *InflightLocks, clock domain.Clock, logger *slog.Logger) *CompleteTaskHandler {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteTaskHandler{
		submitter: submitter,
		refresher: refresher,
		proofs:    proofs,
		locks:     locks,
		clock:     clock,
		logger:    logger,
	}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	subject, err := currentSubject(h.refresher)
	if err != nil {
		return nil, err
	}

	release, ok := h.locks.Acquire(LockKey{TaskID: cmd.TaskID.String(), Action: ActionComplete})
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	tx, err := h.submitter.Submit(ctx, subject, ActionComplete, cmd.TaskID.String(), func(ctx context.Context, w domain.LedgerWriter) (common.Hash, error) {
		return w.CompleteTask(ctx, cmd.TaskID)
	})
	if err != nil {
		return nil, err
	}

	result := &CompleteTaskResult{TxResult: *tx}
	url := strings.TrimSpace(cmd.ProofURL)
	if url == "" {
		return result, nil
	}
	if err := h.proofs.Add(ctx, cmd.TaskID, url, cmd.ProofFile, h.clock.Now()); err != nil {
		h.logger.WarnContext(ctx, "failed to record completion proof", "task_id", cmd.TaskID.String(), "error", err)
		return result, nil
	}
	result.ProofRecorded = true
	return result, nil
}
