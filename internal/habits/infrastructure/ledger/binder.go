package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// BinderConfig configures a Binder.
type BinderConfig struct {
	Backend      WriteBackend
	Breaker      *Breaker
	ChainID      *big.Int
	Key          *ecdsa.PrivateKey
	PollInterval time.Duration
}

// Binder hands out readers and writers bound to user contracts on one node.
type Binder struct {
	config BinderConfig

	mu      sync.Mutex
	readers map[common.Address]*Reader
	writers map[common.Address]*Writer
}

// NewBinder creates a new Binder.
func NewBinder(config BinderConfig) *Binder {
	return &Binder{
		config:  config,
		readers: make(map[common.Address]*Reader),
		writers: make(map[common.Address]*Writer),
	}
}

// Reader returns the reader bound to contract.
func (b *Binder) Reader(contract common.Address) domain.LedgerReader {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r, ok := b.readers[contract]; ok {
		return r
	}
	r := NewReader(contract, b.config.Backend, b.config.Breaker)
	b.readers[contract] = r
	return r
}

// Writer returns the writer bound to contract, or ErrNoSigner without a key.
func (b *Binder) Writer(contract common.Address) (domain.LedgerWriter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.writers[contract]; ok {
		return w, nil
	}
	w, err := NewWriter(contract, b.config.Backend, b.config.Key, b.config.ChainID, b.config.Breaker, b.config.PollInterval)
	if err != nil {
		return nil, err
	}
	b.writers[contract] = w
	return w, nil
}

// Dial connects to an RPC node.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger rpc: %w", err)
	}
	return client, nil
}
