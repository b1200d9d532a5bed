package commands

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/mock"
)

var (
	testWallet   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testContract = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testSubject  = domain.Subject{Wallet: testWallet, Contract: testContract}
	testTx       = common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000001")
	testNow      = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	testDay      = domain.CurrentDay(testNow)
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) AddTask(ctx context.Context, name string) (common.Hash, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockWriter) CompleteTask(ctx context.Context, taskID domain.TaskID) (common.Hash, error) {
	args := m.Called(ctx, taskID.String())
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockWriter) RemoveTask(ctx context.Context, taskID domain.TaskID) (common.Hash, error) {
	args := m.Called(ctx, taskID.String())
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockWriter) ClaimReward(ctx context.Context) (common.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockWriter) AwaitConfirmation(ctx context.Context, tx common.Hash) (*domain.Receipt, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

type writerBinder struct{ w domain.LedgerWriter }

func (b writerBinder) Writer(common.Address) (domain.LedgerWriter, error) { return b.w, nil }

type mockRefresher struct {
	mock.Mock
	subject domain.Subject
}

func (m *mockRefresher) Subject() domain.Subject { return m.subject }

func (m *mockRefresher) Refresh(ctx context.Context, trigger refresh.Trigger) (*refresh.Snapshot, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refresh.Snapshot), args.Error(1)
}

type mockReader struct {
	mock.Mock
}

func (m *mockReader) UserTasks(ctx context.Context, user common.Address) ([]domain.Task, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *mockReader) TaskStatus(ctx context.Context, user common.Address, id domain.TaskID) (domain.DayNumber, error) {
	args := m.Called(ctx, user, id.String())
	return args.Get(0).(domain.DayNumber), args.Error(1)
}

func (m *mockReader) Streak(ctx context.Context, user common.Address) (uint64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockReader) LongestStreak(ctx context.Context, user common.Address) (uint64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockReader) DailyReward(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *mockReader) BonusPercent(ctx context.Context, streak uint64) (uint64, error) {
	args := m.Called(ctx, streak)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockReader) LastClaimDay(ctx context.Context, user common.Address) (domain.DayNumber, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.DayNumber), args.Error(1)
}

func (m *mockReader) RewardClaims(ctx context.Context, user common.Address) ([]domain.RewardClaimRecord, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RewardClaimRecord), args.Error(1)
}

type readerBinder struct{ r domain.LedgerReader }

func (b readerBinder) Reader(common.Address) domain.LedgerReader { return b.r }

type mockCategories struct {
	mock.Mock
}

func (m *mockCategories) Set(ctx context.Context, id domain.TaskID, c domain.Category) error {
	return m.Called(ctx, id.String(), c).Error(0)
}

func (m *mockCategories) Remove(ctx context.Context, id domain.TaskID) error {
	return m.Called(ctx, id.String()).Error(0)
}

type mockProofs struct {
	mock.Mock
}

func (m *mockProofs) Add(ctx context.Context, id domain.TaskID, url, fileName string, at time.Time) error {
	return m.Called(ctx, id.String(), url, fileName, at).Error(0)
}

func (m *mockProofs) Remove(ctx context.Context, id domain.TaskID) error {
	return m.Called(ctx, id.String()).Error(0)
}

func confirmed() *domain.Receipt {
	return &domain.Receipt{TransactionID: testTx, BlockNumber: 42, Succeeded: true}
}

// fixture wires handlers over fresh mocks for one test.
type fixture struct {
	writer     *mockWriter
	refresher  *mockRefresher
	reader     *mockReader
	categories *mockCategories
	proofs     *mockProofs
	locks      *InflightLocks
	submitter  *Submitter
}

func newFixture(subject domain.Subject) *fixture {
	f := &fixture{
		writer:     new(mockWriter),
		refresher:  &mockRefresher{subject: subject},
		reader:     new(mockReader),
		categories: new(mockCategories),
		proofs:     new(mockProofs),
		locks:      NewInflightLocks(),
	}
	f.submitter = NewSubmitter(writerBinder{f.writer}, f.refresher, nil, nil, nil)
	return f
}

func (f *fixture) expectRefresh() *refresh.Snapshot {
	snap := &refresh.Snapshot{Subject: testSubject, Generation: 1}
	f.refresher.On("Refresh", mock.Anything, refresh.TriggerTransactionConfirmed).Return(snap, nil).Once()
	return snap
}
