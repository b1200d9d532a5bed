package queries

import (
	"context"

	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// SnapshotSource is the refresh coordinator as seen by queries.
type SnapshotSource interface {
	Snapshot() *refresh.Snapshot
	Refresh(ctx context.Context, trigger refresh.Trigger) (*refresh.Snapshot, error)
}

// ProofReader reads local completion proofs.
type ProofReader interface {
	Get(ctx context.Context, id domain.TaskID, dateKey string) (domain.TaskProof, bool)
	List(ctx context.Context, id domain.TaskID) []domain.TaskProof
	All(ctx context.Context) map[string]map[string]domain.TaskProof
}

// snapshot returns the latest snapshot, fetching one when there is none or
// when fresh is set.
func snapshot(ctx context.Context, src SnapshotSource, fresh bool) (*refresh.Snapshot, error) {
	if !fresh {
		if snap := src.Snapshot(); snap != nil {
			return snap, nil
		}
	}
	return src.Refresh(ctx, refresh.TriggerUserRequested)
}
