package queue

import (
	"context"
	"encoding/json"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	queue  string
}

func NewProducer(client *redis.Client, cfg *config.Config) *Producer {
	return &Producer{
		client: client,
		queue:  cfg.Redis.ImportQueue,
	}
}

// EnqueueImportJob pushes a queued alumni import for the import worker.
func (p *Producer) EnqueueImportJob(ctx context.Context, job model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, p.queue, data).Err()
}
