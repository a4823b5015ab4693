// Package httpcache negotiates conditional GET responses.
package httpcache

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultMaxAge is the freshness lifetime advertised to clients.
const DefaultMaxAge = time.Hour

// Negotiator computes validators and freshness for response bodies.
type Negotiator struct {
	MaxAge time.Duration
}

// VaryCredentials lists every request header that can carry an API key.
const VaryCredentials = "Authorization, X-API-Key"

// Result is the outcome of negotiating one response.
type Result struct {
	ETag         string
	Fresh        bool
	CacheControl string
	// Vary is set when the response depends on request credentials.
	Vary string
}

// New returns a Negotiator advertising maxAge.
func New(maxAge time.Duration) *Negotiator {
	if maxAge < 0 {
		maxAge = DefaultMaxAge
	}
	return &Negotiator{MaxAge: maxAge}
}

// Fingerprint returns the strong ETag of body.
func Fingerprint(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}

// Cacheable reports whether r participates in negotiation.
func Cacheable(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// Negotiate fingerprints body and checks it against r's If-None-Match.
func (n *Negotiator) Negotiate(body []byte, r *http.Request) Result {
	res := Result{
		ETag:         Fingerprint(body),
		CacheControl: "public, max-age=" + strconv.Itoa(int(n.MaxAge/time.Second)),
	}
	if r.Header.Get("Authorization") != "" || r.Header.Get("X-API-Key") != "" {
		res.Vary = VaryCredentials
	}
	res.Fresh = Cacheable(r) && matches(r.Header.Values("If-None-Match"), res.ETag)
	return res
}

// Write sends body with cache headers, or 304 when the client copy is fresh.
// Non-cacheable requests get body as-is. It reports whether a 304 was sent.
func (n *Negotiator) Write(w http.ResponseWriter, r *http.Request, status int, body []byte) bool {
	if !Cacheable(r) || status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return false
	}

	res := n.Negotiate(body, r)
	h := w.Header()
	h.Set("ETag", res.ETag)
	h.Set("Cache-Control", res.CacheControl)
	if res.Vary != "" {
		h.Add("Vary", res.Vary)
	}

	if res.Fresh {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	h.Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
	return false
}

// matches implements the weak comparison of If-None-Match.
func matches(headers []string, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, header := range headers {
		for _, candidate := range strings.Split(header, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" {
				continue
			}
			if candidate == "*" {
				return true
			}
			if strings.TrimPrefix(candidate, "W/") == want {
				return true
			}
		}
	}
	return false
}
