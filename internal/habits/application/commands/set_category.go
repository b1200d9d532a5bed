package commands

import (
	"context"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// SetCategoryCommand tags a task locally. The uncategorized bucket clears the tag.
type SetCategoryCommand struct {
	TaskID   domain.TaskID
	Category domain.Category
}

// SetCategoryHandler handles SetCategoryCommand and ClearCategoryCommand.
// Tags never touch the ledger.
type SetCategoryHandler struct {
	categories CategoryWriter
}

// NewSetCategoryHandler creates a new SetCategoryHandler.
func NewSetCategoryHandler(categories CategoryWriter) *SetCategoryHandler {
	return &SetCategoryHandler{categories: categories}
}

// Handle executes the SetCategoryCommand.
func (h *SetCategoryHandler) Handle(ctx context.Context, cmd SetCategoryCommand) error {
	if cmd.Category == domain.CategoryUncategorized {
		return h.Clear(ctx, ClearCategoryCommand{TaskID: cmd.TaskID})
	}
	if !cmd.Category.IsValid() {
		return domain.ErrInvalidCategory
	}
	return h.categories.Set(ctx, cmd.TaskID, cmd.Category)
}

// ClearCategoryCommand removes a task's tag.
type ClearCategoryCommand struct {
	TaskID domain.TaskID
}

// Clear executes the ClearCategoryCommand.
func (h *SetCategoryHandler) Clear(ctx context.Context, cmd ClearCategoryCommand) error {
	return h.categories.Remove(ctx, cmd.TaskID)
}
