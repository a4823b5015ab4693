package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/service"
	"github.com/bilemo/bilemo/internal/view"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	svc      *service.ProductService
	respond  *Responder
	pageOpts paginate.Options
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.ProductService, respond *Responder, pageOpts paginate.Options) *ProductHandler {
	return &ProductHandler{svc: svc, respond: respond, pageOpts: pageOpts}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r, h.pageOpts)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, r, http.StatusOK, view.RenderPage(view.ProductSchema, page, view.List, h.respond.routes))
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, r, http.StatusOK, view.ProductSchema.Render(p, view.Show, h.respond.routes))
}
