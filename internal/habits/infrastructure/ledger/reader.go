package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/convert"
)

// Caller is the read side of an RPC node.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Reader reads one KeepUp user contract.
type Reader struct {
	address common.Address
	caller  Caller
	breaker *Breaker
	abi     abi.ABI
	tasks   taskDecoder
}

var _ domain.LedgerReader = (*Reader)(nil)

// NewReader creates a Reader for the embedded KeepUp ABI.
func NewReader(address common.Address, caller Caller, breaker *Breaker) *Reader {
	r, err := NewReaderWithABI(address, caller, breaker, keepUpABI)
	if err != nil {
		panic(fmt.Sprintf("ledger: embedded ABI has no task decoder: %v", err))
	}
	return r
}

// NewReaderWithABI creates a Reader for a contract ABI, choosing the task
// decoder from its getUserTasks outputs.
func NewReaderWithABI(address common.Address, caller Caller, breaker *Breaker, contractABI abi.ABI) (*Reader, error) {
	method, ok := contractABI.Methods[methodUserTasks]
	if !ok {
		return nil, fmt.Errorf("%w: no %s method", ErrUnsupportedSchema, methodUserTasks)
	}
	decoder, err := taskDecoderFor(method)
	if err != nil {
		return nil, err
	}
	return &Reader{
		address: address,
		caller:  caller,
		breaker: breaker,
		abi:     contractABI,
		tasks:   decoder,
	}, nil
}

// UserTasks returns every task of user in ledger order.
func (r *Reader) UserTasks(ctx context.Context, user common.Address) ([]domain.Task, error) {
	out, err := r.call(ctx, methodUserTasks, user)
	if err != nil {
		return nil, err
	}
	return r.tasks.decode(out)
}

// TaskStatus returns the last day the task was completed.
func (r *Reader) TaskStatus(ctx context.Context, user common.Address, taskID domain.TaskID) (domain.DayNumber, error) {
	v, err := r.callUint(ctx, methodTaskStatus, user, taskID.Big())
	return domain.DayNumber(v), err
}

// Streak returns the current claim streak.
func (r *Reader) Streak(ctx context.Context, user common.Address) (uint64, error) {
	return r.callUint(ctx, methodStreak, user)
}

// LongestStreak returns the longest claim streak.
func (r *Reader) LongestStreak(ctx context.Context, user common.Address) (uint64, error) {
	return r.callUint(ctx, methodLongestStreak, user)
}

// DailyReward returns the base reward in wei.
func (r *Reader) DailyReward(ctx context.Context) (*big.Int, error) {
	return r.callBig(ctx, methodDailyReward)
}

// BonusPercent returns the streak bonus percentage.
func (r *Reader) BonusPercent(ctx context.Context, streak uint64) (uint64, error) {
	return r.callUint(ctx, methodBonusPercent, new(big.Int).SetUint64(streak))
}

// LastClaimDay returns the day of the last claim, 0 if never claimed.
func (r *Reader) LastClaimDay(ctx context.Context, user common.Address) (domain.DayNumber, error) {
	v, err := r.callUint(ctx, methodLastClaimDay, user)
	return domain.DayNumber(v), err
}

// RewardClaims returns every RewardClaimed log for user from genesis to the
// latest block.
func (r *Reader) RewardClaims(ctx context.Context, user common.Address) ([]domain.RewardClaimRecord, error) {
	event, ok := r.abi.Events[eventRewardClaimed]
	if !ok {
		return nil, fmt.Errorf("%w: no %s event", ErrUnsupportedSchema, eventRewardClaimed)
	}
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{r.address},
		Topics: [][]common.Hash{
			{event.ID},
			{common.BytesToHash(user.Bytes())},
		},
	}

	var logs []types.Log
	err := r.breaker.Do(ctx, eventRewardClaimed, func(ctx context.Context) error {
		var err error
		logs, err = r.caller.FilterLogs(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter %s logs: %w", eventRewardClaimed, err)
	}

	records := make([]domain.RewardClaimRecord, 0, len(logs))
	for _, lg := range logs {
		records = append(records, decodeRewardClaimed(event, lg))
	}
	return records, nil
}

// decodeRewardClaimed decodes one log. Fields that fail to decode read as zero.
func decodeRewardClaimed(event abi.Event, lg types.Log) domain.RewardClaimRecord {
	values := make(map[string]any)
	_ = event.Inputs.NonIndexed().UnpackIntoMap(values, lg.Data)

	amount, _ := values["amount"].(*big.Int)
	if amount == nil {
		amount = new(big.Int)
	}
	day, _ := values["dayNumber"].(*big.Int)
	streak, _ := values["newStreak"].(*big.Int)

	return domain.RewardClaimRecord{
		Amount:        amount,
		DayNumber:     domain.DayNumber(convert.BigToUint64Clamped(day)),
		StreakAtClaim: convert.BigToUint64Clamped(streak),
		TransactionID: lg.TxHash,
		LogIndex:      lg.Index,
	}
}

func (r *Reader) call(ctx context.Context, method string, args ...any) ([]any, error) {
	return callContract(ctx, r.caller, r.breaker, r.abi, r.address, method, args...)
}

func (r *Reader) callBig(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := r.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	v, ok := out[0].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%s returned %T, expected integer", method, out[0])
	}
	return new(big.Int).Set(v), nil
}

func (r *Reader) callUint(ctx context.Context, method string, args ...any) (uint64, error) {
	v, err := r.callBig(ctx, method, args...)
	if err != nil {
		return 0, err
	}
	return convert.BigToUint64Clamped(v), nil
}

// callContract packs, calls and unpacks one view method at the latest block.
func callContract(ctx context.Context, caller Caller, breaker *Breaker, contractABI abi.ABI, address common.Address, method string, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	var output []byte
	err = breaker.Do(ctx, method, func(ctx context.Context) error {
		var err error
		output, err = caller.CallContract(ctx, ethereum.CallMsg{To: &address, Data: input}, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := contractABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return out, nil
}
