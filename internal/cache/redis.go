package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"policymatcher/internal/config"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
	retryBackoff    = time.Second
)

// Connect opens a client and pings it, retrying while redis is still starting
// up. The client is closed again when every attempt fails.
func Connect(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = ping(ctx, client); err == nil {
			return client, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("addr", cfg.Addr).Msg("redis not ready")

		if attempt == connectAttempts || !sleep(ctx, time.Duration(attempt)*retryBackoff) {
			break
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
