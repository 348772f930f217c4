package redis_test

import (
	"context"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/redis"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", f.err)
}

func TestPing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := redis.Ping(ctx, fakePinger{})
	require.NoError(t, err)

	boom := errors.New("connection refused")
	rtt, err := redis.Ping(ctx, fakePinger{err: boom})
	assert.Zero(t, rtt)
	assert.True(t, errors.Is(err, redis.ErrHealthcheckFailed))
	assert.True(t, errors.Is(err, boom))
}
