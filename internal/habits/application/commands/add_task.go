package commands

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// AddTaskCommand creates a task on the ledger, optionally tagging it locally.
type AddTaskCommand struct {
	Name     string
	Category domain.Category
}

// AddTaskResult contains the result of adding a task.
type AddTaskResult struct {
	TxResult
	// TaskID is the id of the created task, when it could be identified.
	TaskID *domain.TaskID
	Tagged bool
}

// AddTaskHandler handles the AddTaskCommand.
type AddTaskHandler struct {
	submitter  *Submitter
	refresher  Refresher
	readers    services.ReaderBinder
	categories CategoryWriter
	locks      *InflightLocks
	logger     *slog.Logger
}

// NewAddTaskHandler creates a new AddTaskHandler.
func NewAddTaskHandler(submitter *Submitter, refresher Refresher, readers services.ReaderBinder, categories CategoryWriter, locks *InflightLocks, logger *slog.Logger) *AddTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddTaskHandler{
		submitter:  submitter,
		refresher:  refresher,
		readers:    readers,
		categories: categories,
		locks:      locks,
		logger:     logger,
	}
}

// Handle executes the AddTaskCommand.
func (h *AddTaskHandler) Handle(ctx context.Context, cmd AddTaskCommand) (*AddTaskResult, error) {
	subject, err := currentSubject(h.refresher)
	if err != nil {
		return nil, err
	}
	name, err := domain.ValidateTaskName(cmd.Name)
	if err != nil {
		return nil, err
	}
	if cmd.Category != "" && !cmd.Category.IsValid() {
		return nil, domain.ErrInvalidCategory
	}

	release, ok := h.locks.Acquire(LockKey{Action: ActionAdd})
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	tx, err := h.submitter.Submit(ctx, subject, ActionAdd, "", func(ctx context.Context, w domain.LedgerWriter) (common.Hash, error) {
		return w.AddTask(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	result := &AddTaskResult{TxResult: *tx}
	if cmd.Category == "" {
		return result, nil
	}

	// Tagging is best-effort: the task exists on the ledger either way.
	tasks, err := h.readers.Reader(subject.Contract).UserTasks(ctx, subject.Wallet)
	if err != nil {
		h.logger.WarnContext(ctx, "could not re-read tasks to tag new task", "error", err)
		return result, nil
	}
	created, found := newestActiveNamed(tasks, name)
	if !found {
		h.logger.WarnContext(ctx, "new task not found after confirmation", "name", name)
		return result, nil
	}
	result.TaskID = &created.ID

	if err := h.categories.Set(ctx, created.ID, cmd.Category); err != nil {
		h.logger.WarnContext(ctx, "failed to tag new task", "task_id", created.ID.String(), "error", err)
		return result, nil
	}
	result.Tagged = true
	return result, nil
}

// newestActiveNamed returns the active task with the given name and the highest id.
func newestActiveNamed(tasks []domain.Task, name string) (domain.Task, bool) {
	var best domain.Task
	found := false
	for _, t := range tasks {
		if !t.Active || t.Name != name {
			continue
		}
		if !found || t.ID.Cmp(best.ID) > 0 {
			best = t
			found = true
		}
	}
	return best, found
}
