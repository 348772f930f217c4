package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is the part of a redis client Ping needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Ping sends PING to the server and returns the round trip time.
func Ping(ctx context.Context, client Pinger) (time.Duration, error) {
	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		return 0, errors.Join(ErrHealthcheckFailed, err)
	}
	return time.Since(start), nil
}
