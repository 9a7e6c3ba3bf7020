package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hrmaccess/internal/domain/access"
	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/transport/http/api"
	"hrmaccess/internal/transport/http/middleware"
)

type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Handler struct {
	Users  UserStore
	Secret string
	TTL    time.Duration
}

func NewHandler(users UserStore, secret string, ttl time.Duration) *Handler {
	return &Handler{Users: users, Secret: secret, TTL: ttl}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", requestID)
		return
	}

	user, err := h.Users.FindActiveUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Error("login lookup failed", "err", err, "requestId", requestID)
		}
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	role, ok := access.ParseRole(user.RoleName)
	if !ok {
		slog.Warn("login with unknown role", "userId", user.ID, "role", user.RoleName)
		api.Fail(w, http.StatusForbidden, "unknown_role", "account has no usable role", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, EmployeeID: user.EmployeeID, RoleName: string(role)}, h.TTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	if err := h.Users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  map[string]string{"id": user.ID, "employeeId": user.EmployeeID, "role": string(role)},
	}, requestID)
}
