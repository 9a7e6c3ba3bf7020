package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrmaccess/internal/domain/access"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID         string
	EmployeeID string
	RoleName   string
	Password   string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id::text, COALESCE(e.id::text, ''), u.role, u.password_hash
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE u.email = $1 AND u.is_active
  `, email).Scan(&out.ID, &out.EmployeeID, &out.RoleName, &out.Password)
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}

// ListUsers returns users as plain records for the entity filter. The
// password hash is never selected.
func (s *Store) ListUsers(ctx context.Context) ([]access.Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, first_name, last_name, email, role, is_active, last_login_at, created_at, updated_at
    FROM users
    ORDER BY email
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []access.Record
	for rows.Next() {
		var u userRow
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u.record())
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, email, firstName, lastName, role, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, first_name, last_name, role, password_hash)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id::text
  `, email, firstName, lastName, role, passwordHash).Scan(&id)
	return id, err
}
