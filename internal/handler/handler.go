// Package handler provides HTTP request handlers.
package handler

import (
	"net/http"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/view"
)

// Handler serves the API root and the router fallbacks.
type Handler struct {
	respond *Responder
}

// New creates a new Handler instance.
func New(respond *Responder) *Handler {
	return &Handler{respond: respond}
}

// IndexResponse lists the entry points of the API.
type IndexResponse struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Links   map[string]string `json:"_links"`
}

// Index describes the API.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.respond.JSON(w, r, http.StatusOK, IndexResponse{
		Name:    "BileMo API",
		Version: "1.0.0",
		Links: map[string]string{
			"products": h.respond.routes.URL(view.RouteProductList, ""),
			"users":    h.respond.routes.URL(view.RouteUserList, ""),
		},
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respond.Error(w, r, apierr.NotFound(apierr.MsgNotFound))
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respond.Error(w, r, apierr.New(http.StatusMethodNotAllowed, apierr.MsgMethodNotAllowed))
}
