// Package cache provides the Redis-backed principal cache and rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrincipalTTL bounds how long a revoked key keeps authenticating.
const DefaultPrincipalTTL = 5 * time.Minute

// Cache provides Redis cache access methods.
type Cache struct {
	client       *redis.Client
	principalTTL time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client, principalTTL: DefaultPrincipalTTL}
}

// WithPrincipalTTL sets how long resolved principals stay cached.
func (c *Cache) WithPrincipalTTL(ttl time.Duration) *Cache {
	if ttl > 0 {
		c.principalTTL = ttl
	}
	return c
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}
