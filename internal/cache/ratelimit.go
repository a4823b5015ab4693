package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitCustomerPrefix = "ratelimit:customer:"
	rateLimitIPPrefix       = "ratelimit:ip:"
	rateLimitCustomerTTL    = 120 * time.Second
	rateLimitIPTTL          = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes one token atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- seconds
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update)
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckCustomerRateLimit consumes one token from the bucket of a customer.
// A zero rate means unlimited.
func (c *Cache) CheckCustomerRateLimit(ctx context.Context, customerID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute == 0 {
		return unlimited(burst), nil
	}

	ratePerSecond := float64(ratePerMinute) / 60.0
	return c.checkRateLimit(ctx, rateLimitCustomerPrefix+customerID, ratePerSecond, burst, rateLimitCustomerTTL)
}

// CheckIPRateLimit consumes one token from the bucket of an IP address.
// The address is hashed so raw IPs never reach Redis.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond == 0 {
		return unlimited(burst), nil
	}
	return c.checkRateLimit(ctx, rateLimitIPPrefix+hashIP(ip), float64(ratePerSecond), burst, rateLimitIPTTL)
}

// checkRateLimit fails open: on Redis errors the request is allowed and the
// error is returned for logging.
func (c *Cache) checkRateLimit(ctx context.Context, key string, rate float64, burst int, ttl time.Duration) (*RateLimitResult, error) {
	now := time.Now()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		rate, burst, now.Unix(), int(ttl.Seconds()),
	).Int64Slice()
	if err != nil {
		return unlimited(burst), fmt.Errorf("run token bucket: %w", err)
	}

	return bucketResult(result, rate, now), nil
}

func bucketResult(result []int64, rate float64, now time.Time) *RateLimitResult {
	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}
}

func unlimited(burst int) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
