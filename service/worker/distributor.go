package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"tixgate/util"

	"github.com/hibiken/asynq"
)

// Producer side of the background queue. Handlers enqueue work through this
// interface; the order service and tests depend on it rather than on asynq
// directly.
type TaskDistributor interface {
	DistributeTask(ctx context.Context, taskName string, payload any, opts ...asynq.Option) error
}

type RedisTaskDistributor struct {
	client *asynq.Client
}

func NewRedisTaskDistributor(redisOpt asynq.RedisClientOpt) TaskDistributor {
	return &RedisTaskDistributor{
		client: asynq.NewClient(redisOpt),
	}
}

// Enqueue one task. The payload is JSON-encoded; `name` must match a handler
// registered on the processor side, or the task sits in the queue unhandled.
func (distributor *RedisTaskDistributor) DistributeTask(ctx context.Context, name string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of task %s: %w", name, err)
	}

	info, err := distributor.client.EnqueueContext(ctx, asynq.NewTask(name, data, opts...))
	if err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", name, err)
	}

	util.LOGGER.Info("enqueued task", "task_name", name, "queue", info.Queue, "max_retry", info.MaxRetry)
	return nil
}
