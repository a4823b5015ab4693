package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/handler/dto"
	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/service"
	"github.com/bilemo/bilemo/internal/view"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc      *service.UserService
	respond  *Responder
	pageOpts paginate.Options
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, respond *Responder, pageOpts paginate.Options, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, respond: respond, pageOpts: pageOpts, logger: logger}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r, h.pageOpts)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), auth.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, r, http.StatusOK, view.RenderPage(view.UserSchema, page, view.List, h.respond.routes))
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	user, err := h.svc.Create(r.Context(), auth.PrincipalFromContext(r.Context()), req.Input())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"customer_id", user.CustomerID,
	)

	w.Header().Set("Location", h.respond.routes.URL(view.RouteUserShow, user.ID))
	h.respond.JSON(w, r, http.StatusCreated, view.UserSchema.Render(user, view.Show, h.respond.routes))
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, r, http.StatusOK, view.UserSchema.Render(user, view.Show, h.respond.routes))
}

// Update handles PUT /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	user, err := h.svc.Update(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	h.respond.JSON(w, r, http.StatusOK, view.UserSchema.Render(user, view.Show, h.respond.routes))
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	h.respond.JSON(w, r, http.StatusOK, MessageResponse{Code: http.StatusOK, Message: service.MsgUserDeleted})
}
