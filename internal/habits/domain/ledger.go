package domain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrLedgerUnavailable marks a transient read failure.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrTransactionReverted is returned when a confirmed transaction failed on chain.
	ErrTransactionReverted = errors.New("transaction reverted")
)

// LedgerReader is the point-in-time and history read surface of a user contract.
type LedgerReader interface {
	UserTasks(ctx context.Context, user common.Address) ([]Task, error)

	// TaskStatus returns the last day the task was completed, 0 if never.
	TaskStatus(ctx context.Context, user common.Address, taskID TaskID) (DayNumber, error)

	Streak(ctx context.Context, user common.Address) (uint64, error)
	LongestStreak(ctx context.Context, user common.Address) (uint64, error)
	DailyReward(ctx context.Context) (*big.Int, error)

	// BonusPercent is the ledger's additive bonus for a streak length.
	BonusPercent(ctx context.Context, streak uint64) (uint64, error)

	LastClaimDay(ctx context.Context, user common.Address) (DayNumber, error)

	// RewardClaims returns every RewardClaimed event for user, genesis to latest,
	// in log order.
	RewardClaims(ctx context.Context, user common.Address) ([]RewardClaimRecord, error)
}

// Receipt is the confirmed outcome of a submitted transaction.
type Receipt struct {
	TransactionID common.Hash
	BlockNumber   uint64
	GasUsed       uint64
	Succeeded     bool
}

// LedgerWriter submits fee-bearing transactions to a user contract.
type LedgerWriter interface {
	AddTask(ctx context.Context, name string) (common.Hash, error)
	CompleteTask(ctx context.Context, taskID TaskID) (common.Hash, error)
	RemoveTask(ctx context.Context, taskID TaskID) (common.Hash, error)
	ClaimReward(ctx context.Context) (common.Hash, error)

	// AwaitConfirmation blocks until the transaction is mined or ctx ends.
	AwaitConfirmation(ctx context.Context, tx common.Hash) (*Receipt, error)
}

// DeploymentDirectory resolves a wallet to its deployed user contracts.
type DeploymentDirectory interface {
	UserContracts(ctx context.Context, user common.Address) ([]common.Address, error)
}

// ResolveSubject looks up the first deployed contract for wallet.
// A wallet without deployments yields a subject with an empty contract.
func ResolveSubject(ctx context.Context, dir DeploymentDirectory, wallet common.Address) (Subject, error) {
	subject := Subject{Wallet: wallet}
	if !subject.HasWallet() {
		return subject, ErrWalletNotConnected
	}
	contracts, err := dir.UserContracts(ctx, wallet)
	if err != nil {
		return subject, err
	}
	if len(contracts) > 0 {
		subject.Contract = contracts[0]
	}
	return subject, nil
}
