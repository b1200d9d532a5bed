package annotations

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each namespace under the key keepup:<namespace>.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a new RedisBackend.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) key(namespace string) string {
	return "keepup:" + namespace
}

// Load reads the namespace key.
func (b *RedisBackend) Load(ctx context.Context, namespace string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.key(namespace)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", namespace, err)
	}
	return val, nil
}

// Store writes the namespace key without expiry.
func (b *RedisBackend) Store(ctx context.Context, namespace string, data []byte) error {
	if err := b.client.Set(ctx, b.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", namespace, err)
	}
	return nil
}
