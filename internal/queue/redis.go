package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the Redis instance shared by the import queue
// and the listing cache, failing fast when it is unreachable.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddr(), err)
	}

	return rdb, nil
}

// QueueDepth reports pending and dead-lettered import jobs.
func QueueDepth(ctx context.Context, client *redis.Client, cfg *config.Config) (pending, dead int64, err error) {
	if pending, err = client.LLen(ctx, cfg.Redis.ImportQueue).Result(); err != nil {
		return 0, 0, err
	}
	if dead, err = client.LLen(ctx, cfg.Redis.ImportQueue+cfg.Redis.DLQSuffix).Result(); err != nil {
		return 0, 0, err
	}
	return pending, dead, nil
}
