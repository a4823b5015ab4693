package model

import (
	"time"
)

// RateLimitTier constants.
const (
	TierFree      = "free"
	TierPartner   = "partner"
	TierUnlimited = "unlimited"
)

// RateLimitConfig defines rate limit parameters per tier.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// TierConfigs maps tier names to their rate limit configurations.
var TierConfigs = map[string]RateLimitConfig{
	TierFree:      {RequestsPerMinute: 60, Burst: 10},
	TierPartner:   {RequestsPerMinute: 600, Burst: 50},
	TierUnlimited: {RequestsPerMinute: 0, Burst: 0}, // 0 means unlimited
}

// APIKey is a bearer credential issued to a Customer.
type APIKey struct {
	ID            string     `db:"id"`
	CustomerID    string     `db:"customer_id"`
	KeyHash       string     `db:"key_hash"`
	KeyPrefix     string     `db:"key_prefix"`
	RateLimitTier string     `db:"rate_limit_tier"`
	Name          string     `db:"name"`
	RevokedAt     *time.Time `db:"revoked_at"`
	LastUsedAt    *time.Time `db:"last_used_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

// IsRevoked returns true if the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// GetRateLimitConfig returns the rate limit configuration for this key.
func (k *APIKey) GetRateLimitConfig() RateLimitConfig {
	if config, ok := TierConfigs[k.RateLimitTier]; ok {
		return config
	}
	return TierConfigs[TierFree]
}

// Principal is the authenticated Customer issuing a request.
// It is injected into the request context by the auth middleware.
type Principal struct {
	CustomerID    string
	KeyID         string
	KeyPrefix     string
	RateLimitTier string
}

// PrincipalFromKey builds the principal a verified API key authenticates.
func PrincipalFromKey(k *APIKey) *Principal {
	return &Principal{
		CustomerID:    k.CustomerID,
		KeyID:         k.ID,
		KeyPrefix:     k.KeyPrefix,
		RateLimitTier: k.RateLimitTier,
	}
}

// Authenticated reports whether p identifies a Customer.
// A nil principal is anonymous.
func (p *Principal) Authenticated() bool {
	return p != nil && p.CustomerID != ""
}
