package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	testWallet   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testContract = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	testFactory  = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	errNode      = errors.New("node unreachable")
)

// fakeCaller answers view calls with packed outputs keyed by method name.
type fakeCaller struct {
	mu        sync.Mutex
	abis      []abi.ABI
	responses map[string][]byte
	errs      map[string]error
	calls     map[string]int
	inputs    map[string][]any
	logs      []types.Log
	logsErr   error
	queries   []ethereum.FilterQuery
}

func newFakeCaller(abis ...abi.ABI) *fakeCaller {
	if len(abis) == 0 {
		abis = []abi.ABI{keepUpABI, factoryABI}
	}
	return &fakeCaller{
		abis:      abis,
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		inputs:    make(map[string][]any),
	}
}

// respond packs values as the outputs of method.
func (f *fakeCaller) respond(method string, values ...any) {
	for _, a := range f.abis {
		if m, ok := a.Methods[method]; ok {
			data, err := m.Outputs.Pack(values...)
			if err != nil {
				panic(err)
			}
			f.responses[method] = data
			return
		}
	}
	panic("unknown method " + method)
}

func (f *fakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.abis {
		m, err := a.MethodById(call.Data[:4])
		if err != nil {
			continue
		}
		f.calls[m.Name]++
		args, _ := m.Inputs.Unpack(call.Data[4:])
		f.inputs[m.Name] = args
		if err := f.errs[m.Name]; err != nil {
			return nil, err
		}
		return f.responses[m.Name], nil
	}
	return nil, fmt.Errorf("unknown selector %x", call.Data[:4])
}

func (f *fakeCaller) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.logs, f.logsErr
}

func (f *fakeCaller) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// fakeReceipts returns queued receipt lookups in order, repeating the last.
type fakeReceipts struct {
	mu      sync.Mutex
	results []receiptResult
	calls   int
}

type receiptResult struct {
	receipt *types.Receipt
	err     error
}

func (f *fakeReceipts) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	return f.results[i].receipt, f.results[i].err
}
