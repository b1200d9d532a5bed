// Package annotations persists the local task categories and completion
// proofs that the ledger never sees.
package annotations

import (
	"context"
	"sync"
)

// Fixed storage namespaces.
const (
	NamespaceCategories = "keepup-task-categories"
	NamespaceProofs     = "keepup-task-proofs"
)

// Backend stores one opaque blob per namespace. Load returns nil, nil for a
// namespace that was never written.
type Backend interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Store(ctx context.Context, namespace string, data []byte) error
}

// MemoryBackend is an in-memory Backend for tests and ephemeral runs.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBackend creates a new MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

// Load returns a copy of the namespace blob.
func (b *MemoryBackend) Load(ctx context.Context, namespace string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.blobs[namespace]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Store replaces the namespace blob.
func (b *MemoryBackend) Store(ctx context.Context, namespace string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.blobs[namespace] = append([]byte(nil), data...)
	return nil
}
