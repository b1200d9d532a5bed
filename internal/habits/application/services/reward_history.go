package services

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// History is a user's reward claims, most recent day first.
type History struct {
	Records       []domain.RewardClaimRecord
	LifetimeTotal *big.Int
}

// Len returns the number of claims.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Records)
}

// RewardHistoryResolver rebuilds the claim timeline from the event log.
type RewardHistoryResolver struct {
	binder ReaderBinder
}

// NewRewardHistoryResolver creates a new resolver.
func NewRewardHistoryResolver(binder ReaderBinder) *RewardHistoryResolver {
	return &RewardHistoryResolver{binder: binder}
}

// Resolve fetches and orders the full claim history for subject.
func (r *RewardHistoryResolver) Resolve(ctx context.Context, subject domain.Subject) (*History, error) {
	records, err := r.binder.Reader(subject.Contract).RewardClaims(ctx, subject.Wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to load reward claims: %w", err)
	}
	return BuildHistory(records), nil
}

type logKey struct {
	tx    common.Hash
	index uint
}

// BuildHistory deduplicates records by (transaction id, log index), orders
// them by day descending and sums the amounts. Records sharing a day keep log
// order. Records without a transaction id are never merged.
func BuildHistory(records []domain.RewardClaimRecord) *History {
	seen := make(map[logKey]struct{}, len(records))
	out := make([]domain.RewardClaimRecord, 0, len(records))
	total := new(big.Int)

	for _, rec := range records {
		if rec.TransactionID != (common.Hash{}) {
			key := logKey{tx: rec.TransactionID, index: rec.LogIndex}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		rec.Amount = new(big.Int).Set(rec.AmountOrZero())
		total.Add(total, rec.Amount)
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DayNumber > out[j].DayNumber
	})

	return &History{Records: out, LifetimeTotal: total}
}
