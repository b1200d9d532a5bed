package refresh

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	tasks      []domain.Task
	tasksErr   error
	statuses   map[string]domain.DayNumber
	streak     uint64
	longest    uint64
	daily      *big.Int
	bonusByLen map[uint64]uint64
	lastClaim  domain.DayNumber
	claims     []domain.RewardClaimRecord
	claimsErr  error
}

func (m *memLedger) UserTasks(ctx context.Context, user common.Address) ([]domain.Task, error) {
	return m.tasks, m.tasksErr
}

func (m *memLedger) TaskStatus(ctx context.Context, user common.Address, id domain.TaskID) (domain.DayNumber, error) {
	return m.statuses[id.String()], nil
}

func (m *memLedger) Streak(ctx context.Context, user common.Address) (uint64, error) {
	return m.streak, nil
}

func (m *memLedger) LongestStreak(ctx context.Context, user common.Address) (uint64, error) {
	return m.longest, nil
}

func (m *memLedger) DailyReward(ctx context.Context) (*big.Int, error) {
	return m.daily, nil
}

func (m *memLedger) BonusPercent(ctx context.Context, streak uint64) (uint64, error) {
	return m.bonusByLen[streak], nil
}

func (m *memLedger) LastClaimDay(ctx context.Context, user common.Address) (domain.DayNumber, error) {
	return m.lastClaim, nil
}

func (m *memLedger) RewardClaims(ctx context.Context, user common.Address) ([]domain.RewardClaimRecord, error) {
	return m.claims, m.claimsErr
}

type singleBinder struct{ ledger domain.LedgerReader }

func (b singleBinder) Reader(common.Address) domain.LedgerReader { return b.ledger }

type noCategories struct{}

func (noCategories) All(context.Context) map[string]domain.Category { return nil }

func newLoader(ledger domain.LedgerReader) *LedgerLoader {
	binder := singleBinder{ledger}
	return NewLedgerLoader(
		binder,
		services.NewReconciler(binder, noCategories{}, nil, 2),
		services.NewRewardHistoryResolver(binder),
		nil,
	)
}

func TestLedgerLoader_Load(t *testing.T) {
	ctx := context.Background()
	day := domain.CurrentDay(fixedTime)

	base := func() *memLedger {
		return &memLedger{
			tasks: []domain.Task{
				{ID: domain.NewTaskID(1), Name: "Read", Active: true, CreatedAt: fixedTime.Add(-48 * time.Hour)},
				{ID: domain.NewTaskID(2), Name: "Gone", Active: false},
			},
			statuses:   map[string]domain.DayNumber{"1": day},
			streak:     4,
			longest:    9,
			daily:      big.NewInt(50_000_000_000_000_000),
			bonusByLen: map[uint64]uint64{4: 10},
			lastClaim:  day - 1,
			claims: []domain.RewardClaimRecord{
				{Amount: big.NewInt(7), DayNumber: day - 3, TransactionID: common.Hash{1}},
				{Amount: big.NewInt(8), DayNumber: day - 1, TransactionID: common.Hash{2}},
			},
		}
	}

	t.Run("assembles a full snapshot", func(t *testing.T) {
		snap, err := newLoader(base()).Load(ctx, subjectA, day)
		require.NoError(t, err)

		require.Len(t, snap.Board.ActiveTasks, 1)
		assert.True(t, snap.Board.IsCompleted(domain.NewTaskID(1)))
		assert.Equal(t, domain.StreakState{CurrentStreak: 4, LongestStreak: 9, LastClaimDay: day - 1}, snap.Streak)
		assert.Equal(t, uint64(10), snap.Rewards.BonusPercent)
		assert.Equal(t, "55000000000000000", snap.Pending.String())
		assert.True(t, snap.ClaimAvailable())
		assert.Equal(t, "15", snap.History.LifetimeTotal.String())
		assert.Equal(t, day-1, snap.History.Records[0].DayNumber)
	})

	t.Run("already claimed today", func(t *testing.T) {
		ledger := base()
		ledger.lastClaim = day

		snap, err := newLoader(ledger).Load(ctx, subjectA, day)
		require.NoError(t, err)
		assert.False(t, snap.ClaimAvailable())
	})

	t.Run("task list failure fails the load", func(t *testing.T) {
		ledger := base()
		ledger.tasksErr = domain.ErrLedgerUnavailable

		_, err := newLoader(ledger).Load(ctx, subjectA, day)
		assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	})

	t.Run("history failure degrades to empty", func(t *testing.T) {
		ledger := base()
		ledger.claimsErr = errors.New("log query too large")

		snap, err := newLoader(ledger).Load(ctx, subjectA, day)
		require.NoError(t, err)
		assert.Equal(t, 0, snap.History.Len())
		assert.Equal(t, "0", snap.History.LifetimeTotal.String())
	})
}
