package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore keeps snapshots as plain string values, no TTL.
type RedisSnapshotStore struct {
	client *redis.Client
	logger internal.Logger
}

func NewRedisSnapshotStore(ctx context.Context, addr, password string, db int, logger internal.Logger) (*RedisSnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Errorf("failed to connect to redis: %v", err)
		return nil, fmt.Errorf("storage: connect redis: %w", err)
	}
	return &RedisSnapshotStore{client: client, logger: logger}, nil
}

func (r *RedisSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Errorf("storage: error saving snapshot %s: %v", key, err)
		return err
	}
	return nil
}

func (r *RedisSnapshotStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisSnapshotStore) Close() error { return r.client.Close() }

// --- Compile-time assertions ---
var _ SnapshotStore = (*RedisSnapshotStore)(nil)
