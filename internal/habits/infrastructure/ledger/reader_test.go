package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Views(t *testing.T) {
	ctx := context.Background()
	caller := newFakeCaller()
	reward, _ := new(big.Int).SetString("50000000000000000", 10)
	caller.respond(methodTaskStatus, big.NewInt(19783))
	caller.respond(methodStreak, big.NewInt(6))
	caller.respond(methodLongestStreak, big.NewInt(14))
	caller.respond(methodDailyReward, reward)
	caller.respond(methodBonusPercent, big.NewInt(10))
	caller.respond(methodLastClaimDay, big.NewInt(19782))
	caller.respond(methodUserTasks, []taskTuple{
		{Id: big.NewInt(3), Name: "walk", Active: true, CreatedAt: big.NewInt(100)},
	})
	reader := NewReader(testContract, caller, nil)

	t.Run("task status", func(t *testing.T) {
		day, err := reader.TaskStatus(ctx, testWallet, domain.NewTaskID(3))
		require.NoError(t, err)
		assert.Equal(t, domain.DayNumber(19783), day)

		args := caller.inputs[methodTaskStatus]
		require.Len(t, args, 2)
		assert.Equal(t, testWallet, args[0])
		assert.Equal(t, "3", args[1].(*big.Int).String())
	})

	t.Run("streak state", func(t *testing.T) {
		streak, err := reader.Streak(ctx, testWallet)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), streak)

		longest, err := reader.LongestStreak(ctx, testWallet)
		require.NoError(t, err)
		assert.Equal(t, uint64(14), longest)

		last, err := reader.LastClaimDay(ctx, testWallet)
		require.NoError(t, err)
		assert.Equal(t, domain.DayNumber(19782), last)
	})

	t.Run("reward parameters", func(t *testing.T) {
		daily, err := reader.DailyReward(ctx)
		require.NoError(t, err)
		assert.Equal(t, reward.String(), daily.String())

		bonus, err := reader.BonusPercent(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), bonus)
		assert.Equal(t, "6", caller.inputs[methodBonusPercent][0].(*big.Int).String())
	})

	t.Run("user tasks", func(t *testing.T) {
		tasks, err := reader.UserTasks(ctx, testWallet)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "walk", tasks[0].Name)
	})
}

func TestReader_CallFailure(t *testing.T) {
	caller := newFakeCaller()
	caller.errs[methodStreak] = errNode
	reader := NewReader(testContract, caller, nil)

	_, err := reader.Streak(context.Background(), testWallet)

	require.Error(t, err)
	assert.ErrorIs(t, err, errNode)
	assert.Contains(t, err.Error(), "failed to call streak")
}

func TestReader_EmptyResponse(t *testing.T) {
	caller := newFakeCaller()
	reader := NewReader(testContract, caller, nil)

	_, err := reader.DailyReward(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unpack dailyReward")
}

func TestReader_RewardClaims(t *testing.T) {
	event := keepUpABI.Events[eventRewardClaimed]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(1100), big.NewInt(19780), big.NewInt(3))
	require.NoError(t, err)

	caller := newFakeCaller()
	caller.logs = []types.Log{
		{Data: data, TxHash: common.HexToHash("0xaa"), Index: 4},
		{Data: []byte{0x01, 0x02}, TxHash: common.HexToHash("0xbb"), Index: 0},
	}
	reader := NewReader(testContract, caller, nil)

	records, err := reader.RewardClaims(context.Background(), testWallet)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1100", records[0].Amount.String())
	assert.Equal(t, domain.DayNumber(19780), records[0].DayNumber)
	assert.Equal(t, uint64(3), records[0].StreakAtClaim)
	assert.Equal(t, common.HexToHash("0xaa"), records[0].TransactionID)
	assert.Equal(t, uint(4), records[0].LogIndex)

	t.Run("undecodable log reads as zero", func(t *testing.T) {
		assert.Equal(t, int64(0), records[1].Amount.Int64())
		assert.Equal(t, domain.DayNumber(0), records[1].DayNumber)
		assert.Equal(t, common.HexToHash("0xbb"), records[1].TransactionID)
	})

	t.Run("filters by contract and indexed user from genesis", func(t *testing.T) {
		require.Len(t, caller.queries, 1)
		q := caller.queries[0]
		assert.Equal(t, []common.Address{testContract}, q.Addresses)
		assert.Equal(t, int64(0), q.FromBlock.Int64())
		assert.Nil(t, q.ToBlock)
		require.Len(t, q.Topics, 2)
		assert.Equal(t, event.ID, q.Topics[0][0])
		assert.Equal(t, common.BytesToHash(testWallet.Bytes()), q.Topics[1][0])
	})
}

func TestReader_RewardClaimsFailure(t *testing.T) {
	caller := newFakeCaller()
	caller.logsErr = errNode
	reader := NewReader(testContract, caller, nil)

	_, err := reader.RewardClaims(context.Background(), testWallet)

	assert.ErrorIs(t, err, errNode)
}

func TestDirectory_UserContracts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns deployments", func(t *testing.T) {
		caller := newFakeCaller()
		caller.respond(methodUserContracts, []common.Address{testContract})
		dir := NewDirectory(testFactory, caller, nil)

		contracts, err := dir.UserContracts(ctx, testWallet)

		require.NoError(t, err)
		assert.Equal(t, []common.Address{testContract}, contracts)
	})

	t.Run("resolves subject", func(t *testing.T) {
		caller := newFakeCaller()
		caller.respond(methodUserContracts, []common.Address{})
		dir := NewDirectory(testFactory, caller, nil)

		subject, err := domain.ResolveSubject(ctx, dir, testWallet)

		require.NoError(t, err)
		assert.False(t, subject.HasDeployment())
		assert.ErrorIs(t, subject.Ready(), domain.ErrNoDeployment)
	})
}
