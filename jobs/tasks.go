// Package jobs runs the asynchronous side of the exit pipeline: retrying a
// cascading delete that failed inline, and a nightly journal integrity
// scan.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	TaskReapAnggota     = "anggota:reap"
	TaskJurnalIntegrity = "jurnal:integrity"
)

// ReapPayload identifies the member whose records should be reaped.
type ReapPayload struct {
	AnggotaID string `json:"anggotaId"`
}

// NewReapTask builds the asynq task with retry backoff.
func NewReapTask(payload ReapPayload) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReapAnggota, raw, asynq.MaxRetry(5)), nil
}

// NewJurnalIntegrityTask builds the nightly scan task.
func NewJurnalIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskJurnalIntegrity, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReap schedules an out-of-band cascading delete. Satisfies
// refund.ReapEnqueuer.
func (c *Client) EnqueueReap(ctx context.Context, anggotaID string) error {
	task, err := NewReapTask(ReapPayload{AnggotaID: anggotaID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
