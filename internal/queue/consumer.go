package queue

import (
	"context"
	"errors"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

type Consumer struct {
	client      *redis.Client
	queue       string
	dlq         string
	pollTimeout time.Duration
	log         zerolog.Logger
}

type MessageHandler func(ctx context.Context, data []byte) error

func NewConsumer(client *redis.Client, cfg *config.Config) *Consumer {
	return &Consumer{
		client:      client,
		queue:       cfg.Redis.ImportQueue,
		dlq:         cfg.Redis.ImportQueue + cfg.Redis.DLQSuffix,
		pollTimeout: 5 * time.Second,
		log:         logger.Get(),
	}
}

// ConsumeImportQueue blocks until ctx is cancelled. Messages whose handler
// fails are pushed to the dead letter queue.
func (c *Consumer) ConsumeImportQueue(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, c.pollTimeout, c.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue // Timeout, continue polling
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", c.queue).Msg("Failed to consume message")
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := result[1]
			if err := handler(ctx, []byte(message)); err != nil {
				c.log.Error().Err(err).Str("queue", c.queue).Msg("Failed to process message")
				if dlqErr := c.client.LPush(ctx, c.dlq, message).Err(); dlqErr != nil {
					c.log.Error().Err(dlqErr).Str("dlq", c.dlq).Msg("Failed to move message to DLQ")
				}
			}
		}
	}
}
