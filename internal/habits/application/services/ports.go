package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// ReaderBinder returns a ledger reader bound to one user contract.
type ReaderBinder interface {
	Reader(contract common.Address) domain.LedgerReader
}

// CategorySource provides the local category tags keyed by task id.
type CategorySource interface {
	All(ctx context.Context) map[string]domain.Category
}
