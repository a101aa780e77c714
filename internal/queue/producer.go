package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Adder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Producer appends tasks to the work stream.
type Producer struct {
	client Adder
	stream string
	now    func() time.Time
}

func NewProducer(client Adder, stream string) *Producer {
	return &Producer{client: client, stream: stream, now: time.Now}
}

// Enqueue returns the stream entry id.
func (p *Producer) Enqueue(ctx context.Context, taskType string) (string, error) {
	task := Task{Type: taskType, EnqueuedAt: p.now()}
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.values(),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return id, nil
}
