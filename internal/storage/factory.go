package storage

import (
	"context"
	"fmt"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendRedis    = "redis"
)

type RemoteOptions struct {
	Backend     string
	PostgresDSN string
	SQLitePath  string
	LogQueries  bool
}

func NewRemoteStore(ctx context.Context, opts RemoteOptions, logger internal.Logger) (RemoteStore, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendPostgres:
		pg, err := NewPostgresStorage(ctx, opts.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case BackendSQLite:
		return NewSQLiteStorage(opts.SQLitePath, opts.LogQueries, logger)
	}
	return nil, fmt.Errorf("storage: unknown remote backend %q", opts.Backend)
}

type SnapshotOptions struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func NewSnapshotStore(ctx context.Context, opts SnapshotOptions, logger internal.Logger) (SnapshotStore, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileSnapshotStore(opts.Dir, logger)
	case BackendRedis:
		return NewRedisSnapshotStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, logger)
	}
	return nil, fmt.Errorf("storage: unknown snapshot backend %q", opts.Backend)
}
