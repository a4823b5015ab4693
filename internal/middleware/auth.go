package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/model"
)

const lastUsedTimeout = 5 * time.Second

// KeyStore looks up API keys.
type KeyStore interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// PrincipalCache stores resolved principals keyed by a hash of the presented key.
type PrincipalCache interface {
	GetPrincipal(ctx context.Context, cacheKey string) (*model.Principal, error)
	SetPrincipal(ctx context.Context, cacheKey string, p *model.Principal) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Keys    KeyStore
	Cache   PrincipalCache
	Errors  *apierr.Translator
	Metrics metrics.Recorder
	// MinDuration pads every attempt that presented a key so that hits,
	// misses and failures take the same wall time.
	MinDuration time.Duration
}

// Authenticate resolves the API key of a request into a Principal.
// Requests without a key continue anonymously; routes that need a principal
// add RequirePrincipal. A key that is present but does not verify is a 401.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			startTime := time.Now()
			p, reason, err := resolvePrincipal(r.Context(), cfg, key)

			if elapsed := time.Since(startTime); elapsed < cfg.MinDuration {
				time.Sleep(cfg.MinDuration - elapsed)
			}

			// A store outage is not the client's fault and must not read as a bad key.
			if err != nil {
				cfg.Errors.Write(w, r, fmt.Errorf("authenticate: %w", err))
				return
			}

			if p == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				cfg.Errors.Write(w, r, apierr.Unauthorized(apierr.MsgUnauthorized))
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("key_id", p.KeyID),
				slog.String("key_prefix", p.KeyPrefix),
				slog.String("customer_id", p.CustomerID),
				slog.Bool("cache_hit", reason == "cache_hit"),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolvePrincipal verifies key. A rejected key yields a nil principal and
// the reason to log; err is set only when the key store itself failed.
func resolvePrincipal(ctx context.Context, cfg AuthConfig, key string) (*model.Principal, string, error) {
	parsed, err := auth.ParseAPIKey(key)
	if err != nil {
		return nil, "invalid_format", nil
	}

	cacheKey := auth.QuickHash(key)
	if cfg.Cache != nil {
		if p, err := cfg.Cache.GetPrincipal(ctx, cacheKey); err == nil && p != nil {
			cfg.Metrics.IncPrincipalCacheHit()
			return p, "cache_hit", nil
		}
		cfg.Metrics.IncPrincipalCacheMiss()
	}

	keys, err := cfg.Keys.GetAPIKeysByPrefix(ctx, parsed.Prefix)
	if err != nil {
		return nil, "lookup_failed", fmt.Errorf("lookup api key %s: %w", parsed.Prefix, err)
	}

	// Prefixes can collide, so every candidate is verified.
	var matched *model.APIKey
	for _, k := range keys {
		if ok, err := auth.VerifyPassword(key, k.KeyHash); err == nil && ok {
			matched = k
			break
		}
	}
	if matched == nil || matched.IsRevoked() {
		return nil, "invalid_key", nil
	}

	p := model.PrincipalFromKey(matched)
	if cfg.Cache != nil {
		if err := cfg.Cache.SetPrincipal(ctx, cacheKey, p); err != nil {
			cfg.Logger.Warn("failed to cache principal", slog.String("error", err.Error()))
		}
	}

	go func(id string) {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), lastUsedTimeout)
		defer cancel()
		if err := cfg.Keys.UpdateAPIKeyLastUsed(bg, id); err != nil {
			cfg.Logger.Warn("failed to update key last use",
				slog.String("key_id", id),
				slog.String("error", err.Error()),
			)
		}
	}(matched.ID)

	return p, "cache_miss", nil
}

// extractAPIKey extracts the API key from the request.
// Supports both "Authorization: Bearer <key>" and "X-API-Key: <key>" headers.
func extractAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}
