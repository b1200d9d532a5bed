package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// Directory resolves wallets to their KeepUp contracts through the factory.
type Directory struct {
	factory common.Address
	caller  Caller
	breaker *Breaker
}

var _ domain.DeploymentDirectory = (*Directory)(nil)

// NewDirectory creates a new Directory.
func NewDirectory(factory common.Address, caller Caller, breaker *Breaker) *Directory {
	return &Directory{factory: factory, caller: caller, breaker: breaker}
}

// UserContracts returns the contracts deployed for user, oldest first.
func (d *Directory) UserContracts(ctx context.Context, user common.Address) ([]common.Address, error) {
	out, err := callContract(ctx, d.caller, d.breaker, factoryABI, d.factory, methodUserContracts, user)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	contracts, ok := out[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, expected address list", methodUserContracts, out[0])
	}
	return contracts, nil
}
