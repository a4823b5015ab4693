package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/cache"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/model"
)

// fakeLimiter allows the first allow calls per key.
type fakeLimiter struct {
	allow int
	err   error
	calls map[string]int
}

func (f *fakeLimiter) take(key string) (*cache.RateLimitResult, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
	if f.err != nil {
		return &cache.RateLimitResult{Allowed: true}, f.err
	}
	n := f.calls[key]
	return &cache.RateLimitResult{
		Allowed:    n <= f.allow,
		Remaining:  int64(max(f.allow-n, 0)),
		ResetAt:    time.Unix(1700000000, 0),
		RetryAfter: 2 * time.Second,
	}, nil
}

func (f *fakeLimiter) CheckCustomerRateLimit(_ context.Context, customerID string, _, _ int) (*cache.RateLimitResult, error) {
	return f.take("customer:" + customerID)
}

func (f *fakeLimiter) CheckIPRateLimit(_ context.Context, ip string, _, _ int) (*cache.RateLimitResult, error) {
	return f.take("ip:" + ip)
}

func rateLimitConfig(l Limiter, recorder metrics.Recorder) RateLimitConfig {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return RateLimitConfig{
		Logger:     logger,
		Limiter:    l,
		Errors:     apierr.NewTranslator(logger),
		Metrics:    recorder,
		APIEnabled: true,
		IPEnabled:  true,
		IPRPS:      10,
		IPBurst:    2,
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func withPrincipal(r *http.Request, p *model.Principal) *http.Request {
	return r.WithContext(auth.ContextWithPrincipal(r.Context(), p))
}

func TestRateLimitAPI_PerCustomer(t *testing.T) {
	limiter := &fakeLimiter{allow: 2}
	recorder := metrics.NewInMemory()
	handler := RateLimitAPI(rateLimitConfig(limiter, recorder))(okHandler)
	p := &model.Principal{CustomerID: "cust-1", KeyID: "key-1", RateLimitTier: model.TierFree}

	var codes []int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/users", nil), p))
		codes = append(codes, rec.Code)

		if got := rec.Header().Get("X-RateLimit-Limit"); got != "60" {
			t.Errorf("X-RateLimit-Limit = %q, want 60", got)
		}
		if i == 2 {
			if got := rec.Header().Get("Retry-After"); got != "2" {
				t.Errorf("Retry-After = %q, want 2", got)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i, codes[i], want[i])
		}
	}
	if got := recorder.Snapshot().RateLimited; got != 1 {
		t.Errorf("RateLimited = %d, want 1", got)
	}
}

func TestRateLimitAPI_Bypass(t *testing.T) {
	testCases := []struct {
		name      string
		principal *model.Principal
	}{
		{name: "anonymous", principal: nil},
		{name: "unlimited tier", principal: &model.Principal{CustomerID: "cust-1", RateLimitTier: model.TierUnlimited}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limiter := &fakeLimiter{allow: 0}
			handler := RateLimitAPI(rateLimitConfig(limiter, nil))(okHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tc.principal != nil {
				req = withPrincipal(req, tc.principal)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if len(limiter.calls) != 0 {
				t.Errorf("limiter consulted %v", limiter.calls)
			}
		})
	}
}

func TestRateLimitAPI_FailsOpen(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	handler := RateLimitAPI(rateLimitConfig(limiter, nil))(okHandler)

	rec := httptest.NewRecorder()
	p := &model.Principal{CustomerID: "cust-1", RateLimitTier: model.TierFree}
	handler.ServeHTTP(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/users", nil), p))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitIP(t *testing.T) {
	limiter := &fakeLimiter{allow: 1}
	handler := RateLimitIP(rateLimitConfig(limiter, nil))(okHandler)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("first request: %d", got)
	}
	if got := send("10.0.0.1:5678"); got != http.StatusTooManyRequests {
		t.Errorf("second request from same host: %d, want 429", got)
	}
	if got := send("10.0.0.2:1234"); got != http.StatusOK {
		t.Errorf("other host: %d, want 200", got)
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "X-Forwarded-For single",
			xff:        "1.2.3.4",
			remoteAddr: "127.0.0.1:8080",
			want:       "1.2.3.4",
		},
		{
			name:       "X-Forwarded-For multiple",
			xff:        "1.2.3.4, 5.6.7.8, 9.10.11.12",
			remoteAddr: "127.0.0.1:8080",
			want:       "1.2.3.4",
		},
		{
			name:       "X-Real-IP",
			xri:        "1.2.3.4",
			remoteAddr: "127.0.0.1:8080",
			want:       "1.2.3.4",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1",
		},
		{
			name:       "RemoteAddr already bare",
			remoteAddr: "192.168.1.1",
			want:       "192.168.1.1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				req.Header.Set("X-Real-IP", tc.xri)
			}
			req.RemoteAddr = tc.remoteAddr

			if got := getClientIP(req); got != tc.want {
				t.Errorf("getClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}
