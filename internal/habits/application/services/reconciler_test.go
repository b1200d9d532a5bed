package services

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const today domain.DayNumber = 20_000

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps ledger order and drops inactive tasks", func(t *testing.T) {
		ledger := newFakeLedger()
		tasks := []domain.Task{task(5, "Read", true), task(2, "Old", false), task(9, "Run", true), task(1, "Meditate", true)}
		r := NewReconciler(fakeBinder{testContract: ledger}, staticCategories{}, nil, 0)

		board := r.Reconcile(ctx, testSubject, tasks, today)

		require.Len(t, board.ActiveTasks, 3)
		assert.Equal(t, "5", board.ActiveTasks[0].ID.String())
		assert.Equal(t, "9", board.ActiveTasks[1].ID.String())
		assert.Equal(t, "1", board.ActiveTasks[2].ID.String())
	})

	t.Run("completed only on exact day equality", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.statuses["1"] = today
		ledger.statuses["2"] = today - 1
		ledger.statuses["3"] = today + 1
		ledger.statuses["4"] = 0
		tasks := []domain.Task{task(1, "a", true), task(2, "b", true), task(3, "c", true), task(4, "d", true)}
		r := NewReconciler(fakeBinder{testContract: ledger}, staticCategories{}, nil, 0)

		board := r.Reconcile(ctx, testSubject, tasks, today)

		assert.True(t, board.IsCompleted(domain.NewTaskID(1)))
		assert.False(t, board.IsCompleted(domain.NewTaskID(2)), "yesterday does not count")
		assert.False(t, board.IsCompleted(domain.NewTaskID(3)))
		assert.False(t, board.IsCompleted(domain.NewTaskID(4)))
		assert.Equal(t, 1, board.CompletedCount())
	})

	t.Run("a failed status read degrades to not completed", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.statuses["1"] = today
		ledger.statuses["2"] = today
		ledger.statusErr["2"] = errRPC
		tasks := []domain.Task{task(1, "a", true), task(2, "b", true)}
		r := NewReconciler(fakeBinder{testContract: ledger}, staticCategories{}, nil, 0)

		board := r.Reconcile(ctx, testSubject, tasks, today)

		assert.True(t, board.IsCompleted(domain.NewTaskID(1)))
		assert.False(t, board.IsCompleted(domain.NewTaskID(2)))
		assert.Equal(t, 1, board.StatusFailures)
		assert.Len(t, board.ActiveTasks, 2)
	})

	t.Run("never marks a task completed from a day before today", func(t *testing.T) {
		ledger := newFakeLedger()
		var tasks []domain.Task
		for i := uint64(1); i <= 30; i++ {
			ledger.statuses[domain.NewTaskID(i).String()] = today - domain.DayNumber(i)
			tasks = append(tasks, task(i, "t", true))
		}
		r := NewReconciler(fakeBinder{testContract: ledger}, staticCategories{}, nil, 4)

		board := r.Reconcile(ctx, testSubject, tasks, today)

		assert.Zero(t, board.CompletedCount())
	})

	t.Run("bounds concurrent status reads", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.statusDelay = 5 * time.Millisecond
		var tasks []domain.Task
		for i := uint64(1); i <= 12; i++ {
			tasks = append(tasks, task(i, "t", true))
		}
		r := NewReconciler(fakeBinder{testContract: ledger}, staticCategories{}, nil, 3)

		r.Reconcile(ctx, testSubject, tasks, today)

		assert.LessOrEqual(t, ledger.maxInFlight, 3)
		assert.GreaterOrEqual(t, ledger.maxInFlight, 1)
	})
}

func TestReconciler_CategoryBreakdown(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.statuses["1"] = today
	ledger.statuses["3"] = today
	ledger.statuses["4"] = today
	tasks := []domain.Task{
		task(1, "Gym", true),
		task(2, "Run", true),
		task(3, "Read", true),
		task(4, "Inbox zero", true),
		task(5, "Archived", false),
	}
	tags := staticCategories{
		"1":  domain.CategoryFitness,
		"2":  domain.CategoryFitness,
		"3":  domain.CategoryLearning,
		"5":  domain.CategoryWork,
		"77": domain.CategorySocial,
		"4":  domain.Category("bogus"),
	}
	r := NewReconciler(fakeBinder{testContract: ledger}, tags, nil, 0)

	board := r.Reconcile(ctx, testSubject, tasks, today)

	assert.Equal(t, []domain.CategoryStat{
		{Category: domain.CategoryFitness, Completed: 1, Total: 2},
		{Category: domain.CategoryLearning, Completed: 1, Total: 1},
		{Category: domain.CategoryUncategorized, Completed: 1, Total: 1},
	}, board.CategoryBreakdown)

	total := 0
	for _, stat := range board.CategoryBreakdown {
		assert.GreaterOrEqual(t, stat.Completed, 0)
		assert.LessOrEqual(t, stat.Completed, stat.Total)
		total += stat.Total
	}
	assert.Equal(t, len(board.ActiveTasks), total)

	assert.Equal(t, domain.CategoryFitness, board.CategoryOf(domain.NewTaskID(2)))
	assert.Equal(t, domain.CategoryUncategorized, board.CategoryOf(domain.NewTaskID(4)))
	_, staleKept := board.Categories["77"]
	assert.False(t, staleKept, "tags for unknown tasks are ignored")
}

func TestBreakdown_Empty(t *testing.T) {
	assert.Empty(t, Breakdown(nil, nil, nil))
}

func TestFilterByCategory(t *testing.T) {
	tasks := []domain.Task{task(1, "a", true), task(2, "b", false), task(3, "c", true)}
	tags := map[string]domain.Category{"1": domain.CategoryHealth, "2": domain.CategoryHealth}

	assert.Len(t, FilterByCategory(tasks, tags, ""), 3)

	health := FilterByCategory(tasks, tags, domain.CategoryHealth)
	require.Len(t, health, 2)
	assert.Equal(t, "2", health[1].ID.String(), "inactive tasks are filtered too")

	untagged := FilterByCategory(tasks, tags, domain.CategoryUncategorized)
	require.Len(t, untagged, 1)
	assert.Equal(t, "3", untagged[0].ID.String())
}
