package domain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var ErrNothingToClaim = errors.New("no reward available to claim today")

// RewardClaimRecord is one decoded RewardClaimed event.
type RewardClaimRecord struct {
	Amount        *big.Int
	DayNumber     DayNumber
	StreakAtClaim uint64
	TransactionID common.Hash
	// LogIndex is the position of the event inside its block.
	LogIndex uint
}

// AmountOrZero never returns nil.
func (r RewardClaimRecord) AmountOrZero() *big.Int {
	if r.Amount == nil {
		return new(big.Int)
	}
	return r.Amount
}

// StreakState is the ledger's streak bookkeeping for a user.
type StreakState struct {
	CurrentStreak uint64
	LongestStreak uint64
	LastClaimDay  DayNumber
}

// ClaimedOn reports whether a claim was already made on day.
func (s StreakState) ClaimedOn(day DayNumber) bool {
	return s.LastClaimDay == day
}

// RewardParameters are the ledger inputs to a pending reward prediction.
type RewardParameters struct {
	DailyReward  *big.Int
	BonusPercent uint64
}
