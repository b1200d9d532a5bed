package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// TaskDTO is one row of the task board.
type TaskDTO struct {
	ID             string
	Name           string
	Category       domain.Category
	CompletedToday bool
	CreatedAt      time.Time
	// ProofToday is today's proof, if one was recorded.
	ProofToday *domain.TaskProof
	ProofCount int
}

// TaskBoardDTO is today's task board.
type TaskBoardDTO struct {
	Subject        domain.Subject
	Day            domain.DayNumber
	Tasks          []TaskDTO
	CompletedCount int
	TotalCount     int
	Breakdown      []domain.CategoryStat
	StatusFailures int
	SettledAt      time.Time
}

// GetTaskBoardQuery selects the board. An empty Category shows all tasks.
type GetTaskBoardQuery struct {
	Category domain.Category
	Fresh    bool
}

// GetTaskBoardHandler handles the GetTaskBoardQuery.
type GetTaskBoardHandler struct {
	snapshots  SnapshotSource
	categories services.CategorySource
	proofs     ProofReader
}

// NewGetTaskBoardHandler creates a new GetTaskBoardHandler.
func NewGetTaskBoardHandler(snapshots SnapshotSource, categories services.CategorySource, proofs ProofReader) *GetTaskBoardHandler {
	return &GetTaskBoardHandler{
		snapshots:  snapshots,
		categories: categories,
		proofs:     proofs,
	}
}

// Handle executes the GetTaskBoardQuery. Tags are read live so local edits
// show without a ledger refresh. Counts and breakdown cover the whole board;
// the category filter narrows Tasks only.
func (h *GetTaskBoardHandler) Handle(ctx context.Context, query GetTaskBoardQuery) (*TaskBoardDTO, error) {
	snap, err := snapshot(ctx, h.snapshots, query.Fresh)
	if err != nil {
		return nil, err
	}
	if query.Category != "" && query.Category != domain.CategoryUncategorized && !query.Category.IsValid() {
		return nil, domain.ErrInvalidCategory
	}

	board := snap.Board
	tags := h.categories.All(ctx)
	dateKey := snap.Day.DateKey()

	visible := services.FilterByCategory(board.ActiveTasks, tags, query.Category)
	tasks := make([]TaskDTO, 0, len(visible))
	for _, t := range visible {
		dto := TaskDTO{
			ID:             t.ID.String(),
			Name:           t.Name,
			Category:       categoryOf(tags, t.ID),
			CompletedToday: board.IsCompleted(t.ID),
			CreatedAt:      t.CreatedAt,
			ProofCount:     len(h.proofs.List(ctx, t.ID)),
		}
		if proof, ok := h.proofs.Get(ctx, t.ID, dateKey); ok {
			p := proof
			dto.ProofToday = &p
		}
		tasks = append(tasks, dto)
	}

	return &TaskBoardDTO{
		Subject:        snap.Subject,
		Day:            snap.Day,
		Tasks:          tasks,
		CompletedCount: board.CompletedCount(),
		TotalCount:     len(board.ActiveTasks),
		Breakdown:      services.Breakdown(board.ActiveTasks, tags, board.CompletedIDs),
		StatusFailures: board.StatusFailures,
		SettledAt:      snap.SettledAt,
	}, nil
}

func categoryOf(tags map[string]domain.Category, id domain.TaskID) domain.Category {
	if c, ok := tags[id.String()]; ok && c.IsValid() {
		return c
	}
	return domain.CategoryUncategorized
}
