package queries

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRewardsSummaryHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("maps streak and rewards", func(t *testing.T) {
		snaps := new(mockSnapshots)
		snaps.On("Snapshot").Return(testSnapshot(nil))
		handler := NewGetRewardsSummaryHandler(snaps)

		summary, err := handler.Handle(ctx, GetRewardsSummaryQuery{})

		require.NoError(t, err)
		assert.Equal(t, uint64(4), summary.CurrentStreak)
		assert.Equal(t, uint64(9), summary.LongestStreak)
		assert.Equal(t, uint64(10), summary.BonusPercent)
		assert.Equal(t, "1000", summary.DailyReward.String())
		assert.Equal(t, "1100", summary.Pending.String())
		assert.False(t, summary.ClaimedToday)
		assert.True(t, summary.ClaimAvailable)
		assert.Empty(t, summary.History)
		assert.Equal(t, "0", summary.LifetimeTotal.String())
	})

	t.Run("claimed today", func(t *testing.T) {
		snap := testSnapshot(nil)
		snap.Streak.LastClaimDay = testDay
		snap.Pending = new(big.Int)
		snaps := new(mockSnapshots)
		snaps.On("Snapshot").Return(snap)

		summary, err := NewGetRewardsSummaryHandler(snaps).Handle(ctx, GetRewardsSummaryQuery{})

		require.NoError(t, err)
		assert.True(t, summary.ClaimedToday)
		assert.False(t, summary.ClaimAvailable)
	})

	t.Run("limits history newest first", func(t *testing.T) {
		snap := testSnapshot(nil)
		snap.History = services.BuildHistory([]domain.RewardClaimRecord{
			{Amount: big.NewInt(10), DayNumber: testDay - 3, StreakAtClaim: 1, TransactionID: common.HexToHash("0x01")},
			{Amount: big.NewInt(30), DayNumber: testDay - 1, StreakAtClaim: 3, TransactionID: common.HexToHash("0x03")},
			{Amount: big.NewInt(20), DayNumber: testDay - 2, StreakAtClaim: 2, TransactionID: common.HexToHash("0x02")},
		})
		snaps := new(mockSnapshots)
		snaps.On("Snapshot").Return(snap)

		summary, err := NewGetRewardsSummaryHandler(snaps).Handle(ctx, GetRewardsSummaryQuery{HistoryLimit: 2})

		require.NoError(t, err)
		require.Len(t, summary.History, 2)
		assert.Equal(t, testDay-1, summary.History[0].Day)
		assert.Equal(t, (testDay - 1).DateKey(), summary.History[0].Date)
		assert.Equal(t, testDay-2, summary.History[1].Day)
		assert.Equal(t, "60", summary.LifetimeTotal.String())
	})

	t.Run("nil daily reward reads as zero", func(t *testing.T) {
		snap := testSnapshot(nil)
		snap.Rewards.DailyReward = nil
		snaps := new(mockSnapshots)
		snaps.On("Snapshot").Return(snap)

		summary, err := NewGetRewardsSummaryHandler(snaps).Handle(ctx, GetRewardsSummaryQuery{})

		require.NoError(t, err)
		assert.Equal(t, int64(0), summary.DailyReward.Int64())
	})
}
