package queries

import (
	"context"
	"math/big"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// ClaimDTO is one past reward claim.
type ClaimDTO struct {
	Day           domain.DayNumber
	Date          string
	Amount        *big.Int
	StreakAtClaim uint64
	TransactionID string
}

// RewardsSummaryDTO is the streak and reward view.
type RewardsSummaryDTO struct {
	Subject        domain.Subject
	Day            domain.DayNumber
	CurrentStreak  uint64
	LongestStreak  uint64
	BonusPercent   uint64
	DailyReward    *big.Int
	LastClaimDay   domain.DayNumber
	ClaimedToday   bool
	Pending        *big.Int
	ClaimAvailable bool
	History        []ClaimDTO
	LifetimeTotal  *big.Int
	SettledAt      time.Time
}

// GetRewardsSummaryQuery selects the rewards summary.
type GetRewardsSummaryQuery struct {
	Fresh bool
	// HistoryLimit caps History; zero returns every claim.
	HistoryLimit int
}

// GetRewardsSummaryHandler handles the GetRewardsSummaryQuery.
type GetRewardsSummaryHandler struct {
	snapshots SnapshotSource
}

// NewGetRewardsSummaryHandler creates a new GetRewardsSummaryHandler.
func NewGetRewardsSummaryHandler(snapshots SnapshotSource) *GetRewardsSummaryHandler {
	return &GetRewardsSummaryHandler{snapshots: snapshots}
}

// Handle executes the GetRewardsSummaryQuery.
func (h *GetRewardsSummaryHandler) Handle(ctx context.Context, query GetRewardsSummaryQuery) (*RewardsSummaryDTO, error) {
	snap, err := snapshot(ctx, h.snapshots, query.Fresh)
	if err != nil {
		return nil, err
	}

	records := snap.History.Records
	if query.HistoryLimit > 0 && len(records) > query.HistoryLimit {
		records = records[:query.HistoryLimit]
	}
	history := make([]ClaimDTO, 0, len(records))
	for _, r := range records {
		history = append(history, ClaimDTO{
			Day:           r.DayNumber,
			Date:          r.DayNumber.DateKey(),
			Amount:        r.AmountOrZero(),
			StreakAtClaim: r.StreakAtClaim,
			TransactionID: r.TransactionID.Hex(),
		})
	}

	daily := snap.Rewards.DailyReward
	if daily == nil {
		daily = new(big.Int)
	}

	return &RewardsSummaryDTO{
		Subject:        snap.Subject,
		Day:            snap.Day,
		CurrentStreak:  snap.Streak.CurrentStreak,
		LongestStreak:  snap.Streak.LongestStreak,
		BonusPercent:   snap.Rewards.BonusPercent,
		DailyReward:    daily,
		LastClaimDay:   snap.Streak.LastClaimDay,
		ClaimedToday:   snap.Streak.ClaimedOn(snap.Day),
		Pending:        snap.Pending,
		ClaimAvailable: snap.ClaimAvailable(),
		History:        history,
		LifetimeTotal:  snap.History.LifetimeTotal,
		SettledAt:      snap.SettledAt,
	}, nil
}
