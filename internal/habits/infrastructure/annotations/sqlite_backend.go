package annotations

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/database"
)

// SQLiteBackend stores blobs in the annotations table.
type SQLiteBackend struct {
	db database.Executor
}

// NewSQLiteBackend creates a new SQLiteBackend. The schema must already be migrated.
func NewSQLiteBackend(db database.Executor) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// Load reads the namespace blob.
func (b *SQLiteBackend) Load(ctx context.Context, namespace string) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRow(ctx, `SELECT payload FROM annotations WHERE namespace = ?`, namespace).Scan(&payload)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", namespace, err)
	}
	return payload, nil
}

// Store upserts the namespace blob.
func (b *SQLiteBackend) Store(ctx context.Context, namespace string, data []byte) error {
	_, err := b.db.Exec(ctx, `
		INSERT INTO annotations (namespace, payload, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(namespace) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, namespace, data)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", namespace, err)
	}
	return nil
}
