package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Task types carried in the "type" field of a stream entry.
const (
	TaskReminders = "reminders"
	TaskIntegrity = "integrity"
)

// Task is one unit of background work.
type Task struct {
	Type       string
	EnqueuedAt time.Time
}

func (t Task) values() map[string]any {
	return map[string]any{
		"type":       t.Type,
		"enqueuedAt": t.EnqueuedAt.UTC().Format(time.RFC3339),
	}
}

// StreamClient is the subset of *redis.Client the consumer needs.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XPendingExt(ctx context.Context, a *redis.XPendingExtArgs) *redis.XPendingExtCmd
	XClaim(ctx context.Context, a *redis.XClaimArgs) *redis.XMessageSliceCmd
}
