package auth

import (
	"time"

	"hrmaccess/internal/domain/access"
)

type userRow struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Role        string
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (u userRow) record() access.Record {
	rec := access.Record{
		"id":        u.ID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"role":      u.Role,
		"isActive":  u.IsActive,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
	if u.LastLoginAt != nil {
		rec["lastLoginAt"] = *u.LastLoginAt
	}
	return rec
}
