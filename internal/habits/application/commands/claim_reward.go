package commands

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// ClaimRewardCommand claims today's reward.
type ClaimRewardCommand struct{}

// ClaimRewardResult contains the result of a claim.
type ClaimRewardResult struct {
	TxResult
	// Expected is the payout predicted right before submission.
	Expected *big.Int
}

// ClaimRewardHandler handles the ClaimRewardCommand.
type ClaimRewardHandler struct {
	submitter *Submitter
	refresher Refresher
	readers   services.ReaderBinder
	locks     *InflightLocks
	clock     domain.Clock
}

// NewClaimRewardHandler creates a new ClaimRewardHandler.
func NewClaimRewardHandler(submitter *Submitter, refresher Refresher, readers services.ReaderBinder, locks *InflightLocks, clock domain.Clock) *ClaimRewardHandler {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ClaimRewardHandler{
		submitter: submitter,
		refresher: refresher,
		readers:   readers,
		locks:     locks,
		clock:     clock,
	}
}

// Handle executes the ClaimRewardCommand. A zero prediction is rejected with
// domain.ErrNothingToClaim before anything is submitted.
func (h *ClaimRewardHandler) Handle(ctx context.Context, _ ClaimRewardCommand) (*ClaimRewardResult, error) {
	subject, err := currentSubject(h.refresher)
	if err != nil {
		return nil, err
	}

	release, ok := h.locks.Acquire(LockKey{Action: ActionClaim})
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	expected, err := h.pending(ctx, subject)
	if err != nil {
		return nil, err
	}
	if expected.Sign() <= 0 {
		return nil, domain.ErrNothingToClaim
	}

	tx, err := h.submitter.Submit(ctx, subject, ActionClaim, "", func(ctx context.Context, w domain.LedgerWriter) (common.Hash, error) {
		return w.ClaimReward(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &ClaimRewardResult{TxResult: *tx, Expected: expected}, nil
}

func (h *ClaimRewardHandler) pending(ctx context.Context, subject domain.Subject) (*big.Int, error) {
	reader := h.readers.Reader(subject.Contract)

	lastClaim, err := reader.LastClaimDay(ctx, subject.Wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read last claim day: %w", err)
	}
	today := domain.CurrentDay(h.clock.Now())
	if lastClaim == today {
		return new(big.Int), nil
	}

	streak, err := reader.Streak(ctx, subject.Wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}
	bonus, err := reader.BonusPercent(ctx, streak)
	if err != nil {
		return nil, fmt.Errorf("failed to read bonus percent: %w", err)
	}
	daily, err := reader.DailyReward(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily reward: %w", err)
	}
	return services.ComputePending(daily, bonus, lastClaim, today), nil
}
