package services

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultStatusConcurrency bounds the per-task status fan-out.
const DefaultStatusConcurrency = 8

// Board is the reconciled view of a user's tasks for one day.
type Board struct {
	Day          domain.DayNumber
	ActiveTasks  []domain.Task
	CompletedIDs map[string]struct{}
	// Categories holds the tag of every tagged active task.
	Categories        map[string]domain.Category
	CategoryBreakdown []domain.CategoryStat
	// StatusFailures counts tasks whose status read failed and were shown as open.
	StatusFailures int
}

// IsCompleted reports whether the task was completed on the board's day.
func (b *Board) IsCompleted(id domain.TaskID) bool {
	_, ok := b.CompletedIDs[id.String()]
	return ok
}

// CategoryOf returns the task's tag or the uncategorized bucket.
func (b *Board) CategoryOf(id domain.TaskID) domain.Category {
	if c, ok := b.Categories[id.String()]; ok {
		return c
	}
	return domain.CategoryUncategorized
}

// CompletedCount returns how many active tasks were completed today.
func (b *Board) CompletedCount() int {
	return len(b.CompletedIDs)
}

// Reconciler merges ledger tasks and completion facts with local tags.
type Reconciler struct {
	binder      ReaderBinder
	categories  CategorySource
	logger      *slog.Logger
	concurrency int
}

// NewReconciler creates a new Reconciler.
func NewReconciler(binder ReaderBinder, categories CategorySource, logger *slog.Logger, concurrency int) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = DefaultStatusConcurrency
	}
	return &Reconciler{
		binder:      binder,
		categories:  categories,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Reconcile builds the board for subject from tasks as returned by the ledger.
// Ledger order is kept. A failed status read leaves that task open; it never
// fails the pass.
func (r *Reconciler) Reconcile(ctx context.Context, subject domain.Subject, tasks []domain.Task, currentDay domain.DayNumber) *Board {
	active := ActiveTasks(tasks)
	reader := r.binder.Reader(subject.Contract)

	days := make([]domain.DayNumber, len(active))
	failed := make([]bool, len(active))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, task := range active {
		g.Go(func() error {
			day, err := reader.TaskStatus(ctx, subject.Wallet, task.ID)
			if err != nil {
				failed[i] = true
				r.logger.Warn("task status read failed",
					"task_id", task.ID.String(),
					"wallet", subject.Wallet.Hex(),
					"error", err,
				)
				return nil
			}
			days[i] = day
			return nil
		})
	}
	_ = g.Wait()

	board := &Board{
		Day:          currentDay,
		ActiveTasks:  active,
		CompletedIDs: make(map[string]struct{}),
		Categories:   make(map[string]domain.Category),
	}

	for i, task := range active {
		if failed[i] {
			board.StatusFailures++
			continue
		}
		fact := domain.CompletionFact{TaskID: task.ID, LastCompletedDay: days[i]}
		if fact.IsCompletedOn(currentDay) {
			board.CompletedIDs[task.ID.String()] = struct{}{}
		}
	}

	tags := r.categories.All(ctx)
	for _, task := range active {
		if c, ok := tags[task.ID.String()]; ok && c.IsValid() {
			board.Categories[task.ID.String()] = c
		}
	}
	board.CategoryBreakdown = Breakdown(active, board.Categories, board.CompletedIDs)

	return board
}

// ActiveTasks filters out soft-deleted tasks, keeping order.
func ActiveTasks(tasks []domain.Task) []domain.Task {
	active := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Active {
			active = append(active, t)
		}
	}
	return active
}

// Breakdown groups tasks by category enum value. Untagged tasks fall into the
// uncategorized bucket. Empty buckets are omitted; the order follows
// domain.AllCategories with uncategorized last.
func Breakdown(tasks []domain.Task, tags map[string]domain.Category, completed map[string]struct{}) []domain.CategoryStat {
	counts := make(map[domain.Category]*domain.CategoryStat)
	for _, t := range tasks {
		key := t.ID.String()
		c, ok := tags[key]
		if !ok || !c.IsValid() {
			c = domain.CategoryUncategorized
		}
		stat, ok := counts[c]
		if !ok {
			stat = &domain.CategoryStat{Category: c}
			counts[c] = stat
		}
		stat.Total++
		if _, done := completed[key]; done {
			stat.Completed++
		}
	}

	order := append(domain.AllCategories(), domain.CategoryUncategorized)
	stats := make([]domain.CategoryStat, 0, len(counts))
	for _, c := range order {
		if stat, ok := counts[c]; ok {
			stats = append(stats, *stat)
		}
	}
	return stats
}

// FilterByCategory narrows tasks to those tagged with filter. An empty filter
// returns every task. Filtering by uncategorized returns the untagged ones.
func FilterByCategory(tasks []domain.Task, tags map[string]domain.Category, filter domain.Category) []domain.Task {
	if filter == "" {
		return tasks
	}
	filtered := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		c, ok := tags[t.ID.String()]
		if !ok || !c.IsValid() {
			c = domain.CategoryUncategorized
		}
		if c == filter {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
