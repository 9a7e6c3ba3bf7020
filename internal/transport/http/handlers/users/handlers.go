package usershandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrmaccess/internal/domain/access"
	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/transport/http/api"
	"hrmaccess/internal/transport/http/middleware"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]access.Record, error)
}

type Handler struct {
	Users UserLister
	Perms middleware.PermissionStore
}

func NewHandler(users UserLister, perms middleware.PermissionStore) *Handler {
	return &Handler{Users: users, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/users", h.handleList)
}

// handleList applies the per-entity response allow-list; records the role
// may not see at all come back as empty objects so list positions hold.
// A fields query narrows the response and is rejected whole when any
// requested field is outside the allow-list.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	g := user.Guard()

	requested := parseFields(r.URL.Query().Get("fields"))
	var fields access.FieldAccess
	if len(requested) > 0 {
		fields = g.FieldAccess(access.EntityUsers, requested)
		if len(fields.Denied) > 0 {
			api.FailWithDetails(w, http.StatusForbidden, "field_forbidden", "fields not readable", fields.Denied, requestID)
			return
		}
	}

	records, err := h.Users.ListUsers(r.Context())
	if err != nil {
		slog.Error("list users failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "users_list_failed", "failed to list users", requestID)
		return
	}
	out := g.FilterEntities(access.EntityUsers, records)
	if len(requested) > 0 {
		for i, rec := range out {
			out[i] = project(rec, fields.Allowed)
		}
	}
	api.Success(w, out, requestID)
}

func parseFields(raw string) []string {
	var out []string
	for _, field := range strings.Split(raw, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}

func project(rec access.Record, fields []string) access.Record {
	out := access.Record{}
	for _, field := range fields {
		if v, ok := rec[field]; ok {
			out[field] = v
		}
	}
	return out
}
