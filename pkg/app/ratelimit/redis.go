package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "siteguard:ratelimit:"

// admitScript increments the window counter, starting a new window with
// the given ttl when the key did not exist. Returns {count, pttl}.
const admitScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

// RedisLimiter shares windows between instances. Keys expire with their
// window, so no sweeping is needed.
type RedisLimiter struct {
	logger       *logrus.Logger
	client       *redis.Client
	policy       Policy
	timeProvider func() time.Time
}

func NewRedisLimiter(logger *logrus.Logger, client *redis.Client, policy Policy, opts *Options) *RedisLimiter {
	return &RedisLimiter{
		logger:       logger,
		client:       client,
		policy:       policy,
		timeProvider: timeProvider(opts),
	}
}

func (r *RedisLimiter) Policy() Policy {
	return r.policy
}

func Key(client, route string) string {
	return keyPrefix + client + ":" + route
}

func (r *RedisLimiter) Admit(ctx context.Context, client, route string) (Decision, error) {
	key := Key(client, route)
	res, err := r.client.Eval(ctx, admitScript, []string{key}, r.policy.Window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate rate limit for %s: %w", key, err)
	}
	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	count, ok1 := values[0].(int64)
	ttl, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return Decision{}, fmt.Errorf("unexpected rate limit reply %v", res)
	}

	return Decision{
		Allowed: count <= int64(r.policy.MaxRequests),
		Count:   int(count),
		ResetAt: r.timeProvider().Add(time.Duration(ttl) * time.Millisecond),
	}, nil
}
