package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript runs the full window/block transition atomically server-side,
// mirroring MemoryStore.Take. State lives in a hash per key; the key expires
// once both window and block have elapsed so no janitor is needed.
//
// ARGV: now(ms), window(ms), max requests, block duration(ms)
// Returns: {allowed(0/1), count, windowEndsAt(ms), blockedUntil(ms or 0)}
var takeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local block = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'count', 'windowEnd', 'blockedUntil')
local count = tonumber(state[1]) or 0
local windowEnd = tonumber(state[2]) or (now + window)
local blockedUntil = tonumber(state[3]) or 0

if blockedUntil > 0 then
  if now < blockedUntil then
    return {0, count, windowEnd, blockedUntil}
  end
  count = 0
  blockedUntil = 0
  windowEnd = now + window
elseif now >= windowEnd then
  count = 0
  windowEnd = now + window
end

count = count + 1

local allowed = 1
if count > max then
  allowed = 0
  blockedUntil = now + block
end

redis.call('HSET', key, 'count', count, 'windowEnd', windowEnd, 'blockedUntil', blockedUntil)

local expireAt = windowEnd
if blockedUntil > expireAt then
  expireAt = blockedUntil
end
redis.call('PEXPIRE', key, expireAt - now)

return {allowed, count, windowEnd, blockedUntil}
`)

// RedisStore keeps limiter state in Redis so multiple instances share one
// view of each key.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "ratelimit:" key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed store. The client's lifecycle belongs
// to the caller; Close here is a no-op.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client is required")
	}
	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take runs the window/block transition in a single Lua call.
func (s *RedisStore) Take(ctx context.Context, key string, cfg Config) (State, error) {
	now := time.Now()

	raw, err := takeScript.Run(ctx, s.client, []string{s.keyPrefix + key},
		now.UnixMilli(),
		cfg.Window.Milliseconds(),
		cfg.MaxRequests,
		cfg.BlockDuration.Milliseconds(),
	).Result()
	if err != nil {
		return State{}, errors.Join(ErrStoreUnavailable, err)
	}

	values, ok := raw.([]any)
	if !ok || len(values) != 4 {
		return State{}, fmt.Errorf("%w: unexpected script reply %v", ErrStoreUnavailable, raw)
	}

	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	windowEnd, _ := values[2].(int64)
	blockedUntil, _ := values[3].(int64)

	st := State{
		Allowed:      allowed == 1,
		Count:        int(count),
		WindowEndsAt: time.UnixMilli(windowEnd),
	}
	if blockedUntil > 0 {
		st.BlockedUntil = time.UnixMilli(blockedUntil)
	}
	return st, nil
}

// Reset removes all state for key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}
