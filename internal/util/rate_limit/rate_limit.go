package rate_limit

import (
	"context"
	"fmt"
	"math"
	"time"

	"timebridge/internal/cache"

	"github.com/valkey-io/valkey-go"
)

type RateLimiter struct {
	client    func() valkey.Client
	keyPrefix string
}

type RateLimitResult struct {
	Allowed       bool      `json:"allowed"`
	Remaining     int       `json:"remaining"`
	ResetTime     time.Time `json:"resetTime"`
	RetryAfterSec int       `json:"retryAfterSec,omitempty"`
}

const defaultTimeout = 5 * time.Second

// Token bucket evaluated atomically inside valkey: refill by elapsed time,
// take one token if available, persist the new state.
const tokenBucketLuaScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local rate_per_minute = tonumber(ARGV[2])
local burst_limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local current = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(current[1]) or burst_limit
local last_refill = tonumber(current[2]) or now

local elapsed = math.max(0, now - last_refill)
local tokens_to_add = math.floor(elapsed * rate_per_minute / 60000)
if tokens_to_add > 0 then
    tokens = math.min(burst_limit, tokens + tokens_to_add)
    last_refill = now
end

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
redis.call('EXPIRE', key, ttl)

local time_to_full = 0
if tokens < burst_limit then
    time_to_full = math.ceil((burst_limit - tokens) * 60000 / rate_per_minute)
end

return {allowed, tokens, time_to_full}
`

func NewRateLimiter(keyPrefix string) *RateLimiter {
	return &RateLimiter{
		client:    cache.GetCache,
		keyPrefix: "rate_limit:" + keyPrefix + ":",
	}
}

// CheckRateLimit consumes one token from the bucket of subject. Limits are
// expressed per minute since the guarded operations are expensive.
func (r *RateLimiter) CheckRateLimit(subject string, perMinute, burstLimit int) (*RateLimitResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if perMinute <= 0 {
		perMinute = 1
	}
	if burstLimit <= 0 {
		burstLimit = 1
	}

	client := r.client()
	now := time.Now().UnixMilli()
	ttlSec := int64(math.Ceil(float64(burstLimit)*60/float64(perMinute))) + 60

	result := client.Do(ctx, client.B().Eval().
		Script(tokenBucketLuaScript).
		Numkeys(1).
		Key(r.keyPrefix+subject).
		Arg(fmt.Sprintf("%d", now)).
		Arg(fmt.Sprintf("%d", perMinute)).
		Arg(fmt.Sprintf("%d", burstLimit)).
		Arg(fmt.Sprintf("%d", ttlSec)).
		Build())

	if result.Error() != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", result.Error())
	}

	values, err := result.AsIntSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit result: %w", err)
	}

	if len(values) < 3 {
		return nil, fmt.Errorf("invalid rate limit result: expected 3 values, got %d", len(values))
	}

	allowed := values[0] == 1

	var retryAfterSec int
	if !allowed {
		retryAfterSec = max(1, int(math.Ceil(60.0/float64(perMinute))))
	}

	return &RateLimitResult{
		Allowed:       allowed,
		Remaining:     int(values[1]),
		ResetTime:     time.Now().Add(time.Duration(values[2]) * time.Millisecond),
		RetryAfterSec: retryAfterSec,
	}, nil
}

func (r *RateLimiter) ResetRateLimit(subject string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client := r.client()
	return client.Do(ctx, client.B().Del().Key(r.keyPrefix+subject).Build()).Error()
}
