package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/teamsteps/teamsteps/internal/config"
	"github.com/teamsteps/teamsteps/internal/database"
	"github.com/teamsteps/teamsteps/internal/storage"
	"github.com/teamsteps/teamsteps/pkg/logger"
)

const mongoConnectAttempts = 5

// Open builds the repository selected by cfg.Storage.Backend. rdb may be nil,
// in which case the redis backend dials its own client. The returned func
// releases any connections Open created.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Repository, func(), error) {
	noop := func() {}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, noop, err
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warnf("using in-memory user storage; data is lost on restart")
		return NewMemoryRepo(), noop, nil

	case config.BackendRedis:
		closeFn := noop
		if rdb == nil {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
			client := rdb
			closeFn = func() { _ = client.Close() }
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			closeFn()
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr(), err)
		}
		logger.Infof("using Redis user storage at %s key=%s", cfg.Redis.Addr(), cfg.Redis.UsersKey)
		return NewRedisRepo(rdb, cfg.Redis.UsersKey), closeFn, nil

	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, noop, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(MongoCollection)
		logger.Infof("using MongoDB user storage db=%s collection=%s", cfg.MongoDB.Database, MongoCollection)
		return NewMongoRepo(col), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendMinIO:
		st, err := storage.NewMinIOStorage(ctx, &cfg.MinIO)
		if err != nil {
			return nil, noop, err
		}
		logger.Infof("using MinIO user storage bucket=%s object=%s", cfg.MinIO.Bucket, cfg.MinIO.Object)
		return NewObjectRepo(st, cfg.MinIO.Object), noop, nil

	default:
		repo := NewFileRepo(cfg.Storage.DataDir)
		logger.Infof("using file user storage at %s", repo.Path())
		return repo, noop, nil
	}
}
