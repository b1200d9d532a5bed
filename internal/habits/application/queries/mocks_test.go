package queries

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/mock"
)

var (
	testNow     = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	testDay     = domain.CurrentDay(testNow)
	testSubject = domain.Subject{
		Wallet:   common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		Contract: common.HexToAddress("0x00000000000000000000000000000000000000c1"),
	}
)

type mockSnapshots struct {
	mock.Mock
}

func (m *mockSnapshots) Snapshot() *refresh.Snapshot {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*refresh.Snapshot)
}

func (m *mockSnapshots) Refresh(ctx context.Context, trigger refresh.Trigger) (*refresh.Snapshot, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refresh.Snapshot), args.Error(1)
}

type memCategories map[string]domain.Category

func (m memCategories) All(ctx context.Context) map[string]domain.Category {
	out := make(map[string]domain.Category, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memProofs map[string]map[string]domain.TaskProof

func (m memProofs) Get(ctx context.Context, id domain.TaskID, dateKey string) (domain.TaskProof, bool) {
	p, ok := m[id.String()][dateKey]
	return p, ok
}

func (m memProofs) List(ctx context.Context, id domain.TaskID) []domain.TaskProof {
	var out []domain.TaskProof
	for _, p := range m[id.String()] {
		out = append(out, p)
	}
	return out
}

func (m memProofs) All(ctx context.Context) map[string]map[string]domain.TaskProof {
	return m
}

func task(id uint64, name string) domain.Task {
	return domain.Task{ID: domain.NewTaskID(id), Name: name, Active: true, CreatedAt: testNow.Add(-time.Duration(id) * time.Hour)}
}

func testSnapshot(tasks []domain.Task, completed ...uint64) *refresh.Snapshot {
	done := make(map[string]struct{})
	for _, id := range completed {
		done[domain.NewTaskID(id).String()] = struct{}{}
	}
	return &refresh.Snapshot{
		Subject:    testSubject,
		Generation: 1,
		Trigger:    refresh.TriggerSubjectChanged,
		Day:        testDay,
		SettledAt:  testNow,
		Board: &services.Board{
			Day:          testDay,
			ActiveTasks:  tasks,
			CompletedIDs: done,
		},
		Streak:  domain.StreakState{CurrentStreak: 4, LongestStreak: 9, LastClaimDay: testDay - 1},
		Rewards: domain.RewardParameters{DailyReward: big.NewInt(1000), BonusPercent: 10},
		Pending: big.NewInt(1100),
		History: services.BuildHistory(nil),
	}
}
