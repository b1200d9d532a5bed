package domain

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrWalletNotConnected = errors.New("no wallet address configured")
	ErrNoDeployment       = errors.New("no KeepUp contract deployed for this wallet")
)

// Subject identifies whose ledger state is being tracked.
type Subject struct {
	Wallet   common.Address
	Contract common.Address
}

// HasWallet reports whether a wallet is set.
func (s Subject) HasWallet() bool {
	return s.Wallet != (common.Address{})
}

// HasDeployment reports whether a user contract is known.
func (s Subject) HasDeployment() bool {
	return s.Contract != (common.Address{})
}

// Ready returns the first unmet precondition for ledger access, if any.
func (s Subject) Ready() error {
	if !s.HasWallet() {
		return ErrWalletNotConnected
	}
	if !s.HasDeployment() {
		return ErrNoDeployment
	}
	return nil
}

// String returns a compact form for logs.
func (s Subject) String() string {
	return s.Wallet.Hex() + "@" + s.Contract.Hex()
}
