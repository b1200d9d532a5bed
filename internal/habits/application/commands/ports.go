package commands

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// WriterBinder returns a signing ledger writer for one user contract.
type WriterBinder interface {
	Writer(contract common.Address) (domain.LedgerWriter, error)
}

// Refresher is the refresh coordinator as seen by commands.
type Refresher interface {
	Subject() domain.Subject
	Refresh(ctx context.Context, trigger refresh.Trigger) (*refresh.Snapshot, error)
}

// CategoryWriter stores local category tags.
type CategoryWriter interface {
	Set(ctx context.Context, id domain.TaskID, category domain.Category) error
	Remove(ctx context.Context, id domain.TaskID) error
}

// ProofWriter stores local completion proofs.
type ProofWriter interface {
	Add(ctx context.Context, id domain.TaskID, url, fileName string, at time.Time) error
	Remove(ctx context.Context, id domain.TaskID) error
}

// currentSubject returns the coordinator's subject if ledger writes are possible.
func currentSubject(r Refresher) (domain.Subject, error) {
	subject := r.Subject()
	return subject, subject.Ready()
}
