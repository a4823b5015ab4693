package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/bilemo/bilemo/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// UniqueID generates a unique ULID for tests.
func UniqueID() string {
	return ulid.Make().String()
}

// UniqueEmail generates an email address no other test uses.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, strings.ToLower(ulid.Make().String()))
}

// NewTestCustomer creates a test customer with sensible defaults.
func NewTestCustomer(t testing.TB) *model.Customer {
	t.Helper()
	return &model.Customer{
		ID:           UniqueID(),
		Email:        UniqueEmail("customer"),
		Name:         "Stamm Ltd",
		Siret:        "12356894100055",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestUser creates a test user owned by customerID.
func NewTestUser(t testing.TB, customerID string) *model.User {
	t.Helper()
	return &model.User{
		ID:         UniqueID(),
		Firstname:  "Ada",
		Lastname:   "Lovelace",
		Email:      UniqueEmail("user"),
		CustomerID: customerID,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestProduct creates a catalog product.
func NewTestProduct(t testing.TB, name string) *model.Product {
	t.Helper()
	return &model.Product{
		ID:          UniqueID(),
		Name:        name,
		Description: "Test phone " + name,
		Quantity:    1500,
		Price:       model.NewPrice(799, 0),
		PublishedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestAPIKey creates a test API key with sensible defaults.
func NewTestAPIKey(t testing.TB, customerID string) *model.APIKey {
	t.Helper()
	now := time.Now().UTC()
	return &model.APIKey{
		ID:            UniqueID(),
		CustomerID:    customerID,
		KeyHash:       fmt.Sprintf("hash-%d", now.UnixNano()),
		KeyPrefix:     "a1b2c3",
		RateLimitTier: model.TierFree,
		Name:          "Test Key",
		CreatedAt:     now,
	}
}

// NewTestAPIKeyWithTier creates a test API key with a specific tier.
func NewTestAPIKeyWithTier(t testing.TB, customerID string, tier string) *model.APIKey {
	t.Helper()
	key := NewTestAPIKey(t, customerID)
	key.RateLimitTier = tier
	return key
}
