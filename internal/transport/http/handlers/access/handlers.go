package accesshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/transport/http/api"
	"hrmaccess/internal/transport/http/middleware"
)

type Handler struct {
	Perms middleware.PermissionStore
}

func NewHandler(perms middleware.PermissionStore) *Handler {
	return &Handler{Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAccessRead, h.Perms)).Get("/me/field-permissions", h.handleFieldPermissions)
}

func (h *Handler) handleFieldPermissions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, user.Guard().Permissions(), middleware.GetRequestID(r.Context()))
}
