package services

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

var (
	testWallet   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testContract = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testSubject  = domain.Subject{Wallet: testWallet, Contract: testContract}
)

// fakeLedger is an in-memory domain.LedgerReader.
type fakeLedger struct {
	mu sync.Mutex

	tasks     []domain.Task
	statuses  map[string]domain.DayNumber
	statusErr map[string]error
	claims    []domain.RewardClaimRecord
	claimsErr error

	statusDelay time.Duration
	inFlight    int
	maxInFlight int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		statuses:  make(map[string]domain.DayNumber),
		statusErr: make(map[string]error),
	}
}

func (f *fakeLedger) UserTasks(ctx context.Context, user common.Address) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeLedger) TaskStatus(ctx context.Context, user common.Address, taskID domain.TaskID) (domain.DayNumber, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.statusDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if err := f.statusErr[taskID.String()]; err != nil {
		return 0, err
	}
	return f.statuses[taskID.String()], nil
}

func (f *fakeLedger) Streak(ctx context.Context, user common.Address) (uint64, error) {
	return 0, nil
}

func (f *fakeLedger) LongestStreak(ctx context.Context, user common.Address) (uint64, error) {
	return 0, nil
}

func (f *fakeLedger) DailyReward(ctx context.Context) (*big.Int, error) {
	return new(big.Int), nil
}

func (f *fakeLedger) BonusPercent(ctx context.Context, streak uint64) (uint64, error) {
	return 0, nil
}

func (f *fakeLedger) LastClaimDay(ctx context.Context, user common.Address) (domain.DayNumber, error) {
	return 0, nil
}

func (f *fakeLedger) RewardClaims(ctx context.Context, user common.Address) ([]domain.RewardClaimRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimsErr != nil {
		return nil, f.claimsErr
	}
	return append([]domain.RewardClaimRecord(nil), f.claims...), nil
}

type fakeBinder map[common.Address]*fakeLedger

func (b fakeBinder) Reader(contract common.Address) domain.LedgerReader {
	if l, ok := b[contract]; ok {
		return l
	}
	return newFakeLedger()
}

type staticCategories map[string]domain.Category

func (s staticCategories) All(ctx context.Context) map[string]domain.Category {
	out := make(map[string]domain.Category, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

var errRPC = errors.New("rpc timeout")

func task(id uint64, name string, active bool) domain.Task {
	return domain.Task{
		ID:        domain.NewTaskID(id),
		Name:      name,
		Active:    active,
		CreatedAt: time.Unix(1_700_000_000, 0).UTC(),
	}
}

func hashOf(b byte) common.Hash {
	var h common.Hash
	h[31] = b
	return h
}
