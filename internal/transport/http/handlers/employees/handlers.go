package employeeshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrmaccess/internal/domain/access"
	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/domain/employees"
	"hrmaccess/internal/transport/http/api"
	"hrmaccess/internal/transport/http/middleware"
	"hrmaccess/internal/transport/http/shared"
)

var employeeStatuses = []string{"Active", "Inactive", "On Leave", "Terminated"}

var dateFields = []string{
	"dateOfBirth", "hireDate", "joiningDate", "confirmationDate", "resignationDate", "lastWorkingDate",
}

// datePairs lists start/end fields that must not be out of order when both
// arrive in the same patch.
var datePairs = [][2]string{
	{"joiningDate", "confirmationDate"},
	{"resignationDate", "lastWorkingDate"},
}

type Handler struct {
	Service *employees.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *employees.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesBulk, h.Perms)).Post("/bulk-update", h.handleBulkUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/manager/{managerID}/team", h.handleTeam)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	query, v := parseListQuery(r)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	out, total, err := h.Service.List(r.Context(), user.Guard(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func parseListQuery(r *http.Request) (employees.ListQuery, *shared.Validator) {
	v := shared.NewValidator()
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	return employees.ListQuery{
		Search:       strings.TrimSpace(q.Get("search")),
		DepartmentID: strings.TrimSpace(q.Get("department")),
		Status:       v.Enum("status", q.Get("status"), employeeStatuses, "must be one of Active, Inactive, On Leave, Terminated"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}, v
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Service.Get(r.Context(), user.Guard(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Service.Team(r.Context(), user.Guard(), chi.URLParam(r, "managerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var patch access.Record
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch == nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if validatePatch(patch).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	out, err := h.Service.Update(r.Context(), user.Guard(), chi.URLParam(r, "employeeID"), patch, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type bulkUpdateRequest struct {
	IDs    []string      `json:"ids"`
	Fields access.Record `json:"fields"`
}

func (h *Handler) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := validatePatch(payload.Fields)
	if len(payload.IDs) == 0 {
		v.Add("ids", "at least one employee id is required")
	}
	if len(payload.Fields) == 0 {
		v.Add("fields", "at least one field is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.BulkUpdate(r.Context(), user.Guard(), payload.IDs, payload.Fields, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]int{"updated": updated}, middleware.GetRequestID(r.Context()))
}

// validatePatch checks value formats only; field permissions are decided
// by the service. A recognized status is rewritten to its stored spelling.
func validatePatch(patch access.Record) *shared.Validator {
	v := shared.NewValidator()
	if raw, ok := patch["status"]; ok {
		status, isString := raw.(string)
		if !isString {
			v.Add("status", "must be a string")
		} else {
			v.Required("status", status, "status cannot be empty")
			patch["status"] = v.Enum("status", status, employeeStatuses, "must be one of Active, Inactive, On Leave, Terminated")
		}
	}
	dates := make(map[string]time.Time, len(dateFields))
	for _, field := range dateFields {
		raw, ok := patch[field]
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString || s == "" {
			v.Add(field, "must be a valid date in YYYY-MM-DD format")
			continue
		}
		if parsed, ok := v.Date(field, s); ok {
			dates[field] = parsed
		}
	}
	for _, pair := range datePairs {
		v.DateOrder(pair[0], dates[pair[0]], pair[1], dates[pair[1]])
	}
	if email, ok := patch["email"].(string); ok && !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	return v
}

func requestMeta(r *http.Request) employees.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return employees.RequestMeta{
		IP:        ip,
		UserAgent: r.UserAgent(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var verr *employees.ValidationError
	switch {
	case errors.As(err, &verr):
		api.FailWithDetails(w, http.StatusForbidden, "field_forbidden", "edit not permitted", verr.Errors, requestID)
	case errors.Is(err, employees.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "employee not accessible", requestID)
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, employees.ErrInvalidValue):
		api.Fail(w, http.StatusBadRequest, "invalid_value", err.Error(), requestID)
	default:
		slog.Error("employee request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
