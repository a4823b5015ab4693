package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/httpcache"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/view"
)

// Responder writes success bodies through the cache negotiator and failures
// through the error translator.
type Responder struct {
	errors  *apierr.Translator
	cache   *httpcache.Negotiator
	routes  view.Resolver
	metrics metrics.Recorder
}

// NewResponder creates a Responder.
func NewResponder(errs *apierr.Translator, cache *httpcache.Negotiator, routes view.Resolver, recorder metrics.Recorder) *Responder {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if cache == nil {
		cache = httpcache.New(httpcache.DefaultMaxAge)
	}
	if routes == nil {
		routes = view.NewRoutes("")
	}
	return &Responder{errors: errs, cache: cache, routes: routes, metrics: recorder}
}

// JSON serializes v and writes it with status. Cacheable 200 responses carry
// an ETag and may become a 304.
func (rs *Responder) JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		rs.Error(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	body = append(body, '\n')

	if rs.cache.Write(w, r, status, body) {
		rs.metrics.IncNotModified()
	}
}

// Error writes the envelope for err.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	rs.errors.Write(w, r, err)
}

// MessageResponse is the body of operations that return no entity.
type MessageResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
