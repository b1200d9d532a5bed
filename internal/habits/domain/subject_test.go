package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	contracts []common.Address
	err       error
}

func (s stubDirectory) UserContracts(ctx context.Context, user common.Address) ([]common.Address, error) {
	return s.contracts, s.err
}

func TestSubject_Ready(t *testing.T) {
	wallet := common.HexToAddress("0x1111111111111111111111111111111111111111")
	contract := common.HexToAddress("0x2222222222222222222222222222222222222222")

	assert.ErrorIs(t, Subject{}.Ready(), ErrWalletNotConnected)
	assert.ErrorIs(t, Subject{Wallet: wallet}.Ready(), ErrNoDeployment)
	assert.NoError(t, Subject{Wallet: wallet, Contract: contract}.Ready())
}

func TestResolveSubject(t *testing.T) {
	ctx := context.Background()
	wallet := common.HexToAddress("0x1111111111111111111111111111111111111111")
	first := common.HexToAddress("0x2222222222222222222222222222222222222222")
	second := common.HexToAddress("0x3333333333333333333333333333333333333333")

	t.Run("picks the first deployment", func(t *testing.T) {
		s, err := ResolveSubject(ctx, stubDirectory{contracts: []common.Address{first, second}}, wallet)
		require.NoError(t, err)
		assert.Equal(t, Subject{Wallet: wallet, Contract: first}, s)
	})

	t.Run("no deployment leaves contract empty", func(t *testing.T) {
		s, err := ResolveSubject(ctx, stubDirectory{}, wallet)
		require.NoError(t, err)
		assert.False(t, s.HasDeployment())
	})

	t.Run("requires a wallet", func(t *testing.T) {
		_, err := ResolveSubject(ctx, stubDirectory{}, common.Address{})
		assert.ErrorIs(t, err, ErrWalletNotConnected)
	})

	t.Run("propagates directory errors", func(t *testing.T) {
		boom := errors.New("rpc down")
		_, err := ResolveSubject(ctx, stubDirectory{err: boom}, wallet)
		assert.ErrorIs(t, err, boom)
	})
}
