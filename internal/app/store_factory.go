package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/keepup/internal/habits/infrastructure/annotations"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/keepup/pkg/config"
	"github.com/redis/go-redis/v9"
)

// annotationStore is an opened annotation backend plus what it holds open.
type annotationStore struct {
	backend annotations.Backend
	driver  string
	sqlite  *sqlite.Connection
	redis   *redis.Client
}

// ping checks the store's connection, if it has one.
func (s *annotationStore) ping(ctx context.Context) error {
	switch {
	case s.sqlite != nil:
		return s.sqlite.Ping(ctx)
	case s.redis != nil:
		return s.redis.Ping(ctx).Err()
	default:
		return nil
	}
}

func (s *annotationStore) close(logger *slog.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn("error closing Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}
	if s.sqlite != nil {
		if err := s.sqlite.Close(); err != nil {
			logger.Warn("error closing SQLite connection", "error", err)
		} else {
			logger.Info("SQLite connection closed")
		}
	}
}

// openAnnotationStore opens the backend named by cfg.StoreDriver. In
// development an unreachable Redis falls back to memory.
func openAnnotationStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*annotationStore, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		logger.Debug("annotation store opened", "driver", cfg.StoreDriver, "path", cfg.SQLitePath)
		return &annotationStore{backend: annotations.NewSQLiteBackend(conn), driver: cfg.StoreDriver, sqlite: conn}, nil

	case config.StoreFile:
		logger.Debug("annotation store opened", "driver", cfg.StoreDriver, "dir", cfg.StoreDir)
		return &annotationStore{backend: annotations.NewFileBackend(cfg.StoreDir), driver: cfg.StoreDriver}, nil

	case config.StoreRedis:
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				return nil, err
			}
			logger.Warn("Redis not available, annotations will use in-memory fallback", "error", err)
			return &annotationStore{backend: annotations.NewMemoryBackend(), driver: config.StoreMemory}, nil
		}
		logger.Info("connected to Redis")
		return &annotationStore{backend: annotations.NewRedisBackend(client), driver: cfg.StoreDriver, redis: client}, nil

	case config.StoreMemory:
		return &annotationStore{backend: annotations.NewMemoryBackend(), driver: cfg.StoreDriver}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
