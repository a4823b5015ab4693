package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/cache"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/model"
)

// Limiter consumes rate limit tokens.
type Limiter interface {
	CheckCustomerRateLimit(ctx context.Context, customerID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
	CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter Limiter
	Errors  *apierr.Translator
	Metrics metrics.Recorder
	// Per customer, by the tier of the authenticating key.
	APIEnabled bool
	// Per client IP, for the public catalog.
	IPEnabled bool
	IPRPS     int
	IPBurst   int
}

// RateLimitAPI rate limits authenticated requests per customer.
// Must be applied after Authenticate. Anonymous requests pass through.
func RateLimitAPI(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if !cfg.APIEnabled || !p.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}

			tier := (&model.APIKey{RateLimitTier: p.RateLimitTier}).GetRateLimitConfig()
			if tier.RequestsPerMinute == 0 {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckCustomerRateLimit(r.Context(), p.CustomerID, tier.RequestsPerMinute, tier.Burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("customer_id", p.CustomerID),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, tier.RequestsPerMinute, result.Remaining, result.ResetAt)
			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("customer_id", p.CustomerID),
					slog.String("type", "api"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				rejectRateLimited(w, r, cfg, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitIP rate limits requests per client IP.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.IPEnabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), ip, cfg.IPRPS, cfg.IPBurst)
			if err != nil {
				cfg.Logger.Error("IP rate limit check failed",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "ip"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				rejectRateLimited(w, r, cfg, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request, cfg RateLimitConfig, retryAfter time.Duration) {
	cfg.Metrics.IncRateLimited()
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	cfg.Errors.Write(w, r, apierr.New(http.StatusTooManyRequests, apierr.MsgRateLimited))
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
