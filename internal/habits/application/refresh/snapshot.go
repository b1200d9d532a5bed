// Package refresh keeps one consistent, subject-bound snapshot of ledger
// state and decides when it is re-read.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"golang.org/x/sync/errgroup"
)

// Snapshot is one settled, immutable read of a subject's ledger state.
type Snapshot struct {
	Subject    domain.Subject
	Generation uint64
	Trigger    Trigger
	Day        domain.DayNumber
	SettledAt  time.Time

	Board   *services.Board
	Streak  domain.StreakState
	Rewards domain.RewardParameters
	Pending *big.Int
	History *services.History
}

// ClaimAvailable reports whether claiming now would pay out.
func (s *Snapshot) ClaimAvailable() bool {
	return s != nil && s.Pending != nil && s.Pending.Sign() > 0
}

// Loader performs the dependent reads of one refresh.
type Loader interface {
	Load(ctx context.Context, subject domain.Subject, day domain.DayNumber) (*Snapshot, error)
}

// LedgerLoader reads tasks, statuses, streak state, reward parameters and
// history from the ledger.
type LedgerLoader struct {
	binder     services.ReaderBinder
	reconciler *services.Reconciler
	history    *services.RewardHistoryResolver
	logger     *slog.Logger
}

// NewLedgerLoader creates a new LedgerLoader.
func NewLedgerLoader(
	binder services.ReaderBinder,
	reconciler *services.Reconciler,
	history *services.RewardHistoryResolver,
	logger *slog.Logger,
) *LedgerLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerLoader{
		binder:     binder,
		reconciler: reconciler,
		history:    history,
		logger:     logger,
	}
}

// Load fails when a task list or streak read fails. Individual status reads
// and the history degrade instead.
func (l *LedgerLoader) Load(ctx context.Context, subject domain.Subject, day domain.DayNumber) (*Snapshot, error) {
	reader := l.binder.Reader(subject.Contract)

	var (
		board   *services.Board
		streak  domain.StreakState
		rewards domain.RewardParameters
		history *services.History
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := reader.UserTasks(gctx, subject.Wallet)
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		board = l.reconciler.Reconcile(gctx, subject, tasks, day)
		return nil
	})

	g.Go(func() error {
		current, err := reader.Streak(gctx, subject.Wallet)
		if err != nil {
			return fmt.Errorf("failed to load streak: %w", err)
		}
		longest, err := reader.LongestStreak(gctx, subject.Wallet)
		if err != nil {
			return fmt.Errorf("failed to load longest streak: %w", err)
		}
		lastClaim, err := reader.LastClaimDay(gctx, subject.Wallet)
		if err != nil {
			return fmt.Errorf("failed to load last claim day: %w", err)
		}
		bonus, err := reader.BonusPercent(gctx, current)
		if err != nil {
			return fmt.Errorf("failed to load bonus percent: %w", err)
		}
		streak = domain.StreakState{CurrentStreak: current, LongestStreak: longest, LastClaimDay: lastClaim}
		rewards.BonusPercent = bonus
		return nil
	})

	g.Go(func() error {
		daily, err := reader.DailyReward(gctx)
		if err != nil {
			return fmt.Errorf("failed to load daily reward: %w", err)
		}
		rewards.DailyReward = daily
		return nil
	})

	g.Go(func() error {
		h, err := l.history.Resolve(gctx, subject)
		if err != nil {
			l.logger.Warn("reward history unavailable", "subject", subject.String(), "error", err)
			h = services.BuildHistory(nil)
		}
		history = h
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{
		Subject: subject,
		Day:     day,
		Board:   board,
		Streak:  streak,
		Rewards: rewards,
		Pending: services.ComputePending(rewards.DailyReward, rewards.BonusPercent, streak.LastClaimDay, day),
		History: history,
	}, nil
}
