package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrmaccess/internal/domain/access"
	"hrmaccess/internal/domain/auth"
	"hrmaccess/internal/platform/config"
)

// Seed creates the bootstrap admin account when credentials are configured.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id::text FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	id, err = auth.NewStore(pool).CreateUser(ctx, email, "System", "Admin", string(access.RoleAdmin), hash)
	if err != nil {
		return err
	}
	slog.Info("seeded admin user", "userId", id, "email", email)
	return nil
}
