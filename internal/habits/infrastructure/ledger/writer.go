package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// ErrNoSigner is returned when a write is attempted without a signing key.
var ErrNoSigner = errors.New("no signing key configured")

// DefaultPollInterval is the default receipt polling interval.
const DefaultPollInterval = 2 * time.Second

// ReceiptSource looks up mined transaction receipts.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WriteBackend is the full RPC surface a Writer needs.
type WriteBackend interface {
	bind.ContractBackend
	ReceiptSource
}

// Writer submits signed transactions to one KeepUp user contract.
type Writer struct {
	contract     *bind.BoundContract
	receipts     ReceiptSource
	auth         *bind.TransactOpts
	breaker      *Breaker
	pollInterval time.Duration
}

var _ domain.LedgerWriter = (*Writer)(nil)

// NewWriter creates a Writer signing with key for chainID.
func NewWriter(address common.Address, backend WriteBackend, key *ecdsa.PrivateKey, chainID *big.Int, breaker *Breaker, pollInterval time.Duration) (*Writer, error) {
	if key == nil {
		return nil, ErrNoSigner
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Writer{
		contract:     bind.NewBoundContract(address, keepUpABI, backend, backend, backend),
		receipts:     backend,
		auth:         auth,
		breaker:      breaker,
		pollInterval: pollInterval,
	}, nil
}

// AddTask submits addTask(name).
func (w *Writer) AddTask(ctx context.Context, name string) (common.Hash, error) {
	return w.transact(ctx, methodAddTask, name)
}

// CompleteTask submits completeTask(id).
func (w *Writer) CompleteTask(ctx context.Context, taskID domain.TaskID) (common.Hash, error) {
	return w.transact(ctx, methodCompleteTask, taskID.Big())
}

// RemoveTask submits removeTask(id).
func (w *Writer) RemoveTask(ctx context.Context, taskID domain.TaskID) (common.Hash, error) {
	return w.transact(ctx, methodRemoveTask, taskID.Big())
}

// ClaimReward submits claimReward().
func (w *Writer) ClaimReward(ctx context.Context) (common.Hash, error) {
	return w.transact(ctx, methodClaimReward)
}

// AwaitConfirmation polls for the receipt of tx until it is mined or ctx ends.
func (w *Writer) AwaitConfirmation(ctx context.Context, tx common.Hash) (*domain.Receipt, error) {
	return awaitReceipt(ctx, w.receipts, w.breaker, tx, w.pollInterval)
}

func (w *Writer) transact(ctx context.Context, method string, args ...any) (common.Hash, error) {
	opts := *w.auth
	opts.Context = ctx

	var tx *types.Transaction
	err := w.breaker.Do(ctx, method, func(ctx context.Context) error {
		var err error
		tx, err = w.contract.Transact(&opts, method, args...)
		return err
	})
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func awaitReceipt(ctx context.Context, receipts ReceiptSource, breaker *Breaker, tx common.Hash, interval time.Duration) (*domain.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var receipt *types.Receipt
		err := breaker.Do(ctx, "transaction_receipt", func(ctx context.Context) error {
			var err error
			receipt, err = receipts.TransactionReceipt(ctx, tx)
			return err
		})
		switch {
		case err == nil && receipt != nil:
			return toReceipt(tx, receipt)
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func toReceipt(tx common.Hash, r *types.Receipt) (*domain.Receipt, error) {
	receipt := &domain.Receipt{
		TransactionID: tx,
		GasUsed:       r.GasUsed,
		Succeeded:     r.Status == types.ReceiptStatusSuccessful,
	}
	if r.BlockNumber != nil {
		receipt.BlockNumber = r.BlockNumber.Uint64()
	}
	if !receipt.Succeeded {
		return receipt, domain.ErrTransactionReverted
	}
	return receipt, nil
}

// ParsePrivateKey parses a hex-encoded secp256k1 key, with or without 0x.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// KeyAddress returns the account address of key.
func KeyAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
