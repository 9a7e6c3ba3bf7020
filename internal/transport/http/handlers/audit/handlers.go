package audithandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrmaccess/internal/domain/audit"
	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/transport/http/api"
	"hrmaccess/internal/transport/http/middleware"
	"hrmaccess/internal/transport/http/shared"
)

type Reader interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Entry, error)
}

type Handler struct {
	Service Reader
	Perms   middleware.PermissionStore
}

func NewHandler(service Reader, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audit/fields", h.handleListFields)
}

func (h *Handler) handleListFields(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	q := r.URL.Query()
	filter := audit.Filter{
		EntityID:  q.Get("entityId"),
		FieldName: q.Get("fieldName"),
		ActorID:   q.Get("actorId"),
	}

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		slog.Warn("field audit count failed", "err", err)
	}
	entries, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list field audit records", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}
