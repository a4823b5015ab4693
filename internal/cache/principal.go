package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bilemo/bilemo/internal/model"
)

const (
	principalPrefix    = "auth:principal:"
	customerKeysPrefix = "auth:customer:"
	customerKeysSuffix = ":keys"
)

// cachedPrincipal is the Redis representation of a principal.
type cachedPrincipal struct {
	CustomerID    string `json:"customer_id"`
	KeyID         string `json:"key_id"`
	KeyPrefix     string `json:"key_prefix"`
	RateLimitTier string `json:"rate_limit_tier"`
}

func principalKey(cacheKey string) string {
	return principalPrefix + cacheKey
}

func customerKeysKey(customerID string) string {
	return customerKeysPrefix + customerID + customerKeysSuffix
}

// GetPrincipal returns the principal cached under cacheKey.
// A miss or a corrupt entry returns nil and no error.
func (c *Cache) GetPrincipal(ctx context.Context, cacheKey string) (*model.Principal, error) {
	data, err := c.client.Get(ctx, principalKey(cacheKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached principal: %w", err)
	}

	var cached cachedPrincipal
	if err := json.Unmarshal(data, &cached); err != nil || cached.CustomerID == "" {
		return nil, nil //nolint:nilerr
	}

	return &model.Principal{
		CustomerID:    cached.CustomerID,
		KeyID:         cached.KeyID,
		KeyPrefix:     cached.KeyPrefix,
		RateLimitTier: cached.RateLimitTier,
	}, nil
}

// SetPrincipal caches p under cacheKey and indexes it by customer.
func (c *Cache) SetPrincipal(ctx context.Context, cacheKey string, p *model.Principal) error {
	data, err := json.Marshal(cachedPrincipal{
		CustomerID:    p.CustomerID,
		KeyID:         p.KeyID,
		KeyPrefix:     p.KeyPrefix,
		RateLimitTier: p.RateLimitTier,
	})
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}

	index := customerKeysKey(p.CustomerID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, principalKey(cacheKey), data, c.principalTTL)
		pipe.SAdd(ctx, index, cacheKey)
		pipe.Expire(ctx, index, c.principalTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache principal: %w", err)
	}
	return nil
}

// DeletePrincipal removes one cached principal.
func (c *Cache) DeletePrincipal(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, principalKey(cacheKey)).Err()
}

// InvalidateCustomer removes every cached principal of a customer.
func (c *Cache) InvalidateCustomer(ctx context.Context, customerID string) error {
	index := customerKeysKey(customerID)

	members, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("list cached principals: %w", err)
	}

	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, principalKey(m))
	}
	keys = append(keys, index)

	return c.client.Del(ctx, keys...).Err()
}
