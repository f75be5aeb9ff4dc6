package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulakit/aulakit/pkg/ratelimit"
)

func newRedisLimiter(t *testing.T, cfg ratelimit.Config) *ratelimit.Limiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return ratelimit.NewLimiter(ratelimit.NewRedisStore(client), cfg)
}

func TestRedisStore_AllowsUpToMax(t *testing.T) {
	t.Parallel()

	cfg := ratelimit.Config{Window: time.Minute, MaxRequests: 3, BlockDuration: 5 * time.Minute}
	limiter := newRedisLimiter(t, cfg)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := limiter.Check(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "call %d", i)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := limiter.Check(ctx, "client")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.True(t, res.Blocked)
	assert.Positive(t, res.RetryAfter)
}

func TestRedisStore_BlockedKeyKeepsRejecting(t *testing.T) {
	t.Parallel()

	cfg := ratelimit.Config{Window: time.Minute, MaxRequests: 1, BlockDuration: time.Hour}
	limiter := newRedisLimiter(t, cfg)
	ctx := context.Background()

	_, err := limiter.Check(ctx, "client")
	require.NoError(t, err)

	for range 3 {
		res, err := limiter.Check(ctx, "client")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.True(t, res.Blocked)
	}
}

func TestRedisStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	cfg := ratelimit.Config{Window: time.Minute, MaxRequests: 1, BlockDuration: time.Hour}
	limiter := newRedisLimiter(t, cfg)
	ctx := context.Background()

	_, err := limiter.Check(ctx, "a")
	require.NoError(t, err)
	res, err := limiter.Check(ctx, "a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	res, err = limiter.Check(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisStore_Reset(t *testing.T) {
	t.Parallel()

	cfg := ratelimit.Config{Window: time.Minute, MaxRequests: 1, BlockDuration: time.Hour}
	limiter := newRedisLimiter(t, cfg)
	ctx := context.Background()

	_, err := limiter.Check(ctx, "client")
	require.NoError(t, err)
	res, err := limiter.Check(ctx, "client")
	require.NoError(t, err)
	require.True(t, res.Blocked)

	require.NoError(t, limiter.Reset(ctx, "client"))

	res, err = limiter.Check(ctx, "client")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(client), ratelimit.Moderate())

	mr.Close()

	_, err := limiter.Check(context.Background(), "client")
	require.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
}
