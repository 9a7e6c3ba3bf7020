package employees

import (
	"errors"
	"strings"
	"time"

	"hrmaccess/internal/domain/access"
)

var (
	ErrNotFound     = errors.New("employee not found")
	ErrForbidden    = errors.New("employee not accessible")
	ErrInvalidValue = errors.New("invalid field value")
)

// ValidationError carries one message per field the actor may not edit.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "edit not permitted: " + strings.Join(e.Errors, "; ")
}

// RequestMeta is the request origin stamped onto audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// columnFields are stored as real columns; every other field lives in the
// profile document.
var columnFields = map[string]string{
	"userId":       "user_id",
	"departmentId": "department_id",
	"positionId":   "position_id",
	"managerId":    "manager_id",
	"status":       "status",
}

// readOnlyFields are derived by the store and ignored on update.
var readOnlyFields = map[string]struct{}{
	"id":         {},
	"department": {},
	"position":   {},
	"manager":    {},
	"user":       {},
	"createdAt":  {},
	"updatedAt":  {},
}

type employeeRow struct {
	ID           string
	UserID       string
	DepartmentID string
	PositionID   string
	ManagerID    string
	Status       string
	Profile      map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time

	DeptID, DeptName, DeptDescription *string
	PosID, PosTitle, PosDescription   *string
	MgrID, MgrFirst, MgrLast, MgrMail *string
	UsrID, UsrFirst, UsrLast, UsrMail *string
}

func (r employeeRow) record() access.Record {
	rec := make(access.Record, len(r.Profile)+12)
	for k, v := range r.Profile {
		rec[k] = v
	}
	rec["id"] = r.ID
	rec["status"] = r.Status
	rec["createdAt"] = r.CreatedAt
	rec["updatedAt"] = r.UpdatedAt
	setOptional(rec, "userId", r.UserID)
	setOptional(rec, "departmentId", r.DepartmentID)
	setOptional(rec, "positionId", r.PositionID)
	setOptional(rec, "managerId", r.ManagerID)

	if r.DeptID != nil {
		rec["department"] = access.Record{"id": *r.DeptID, "name": deref(r.DeptName), "description": deref(r.DeptDescription)}
	}
	if r.PosID != nil {
		rec["position"] = access.Record{"id": *r.PosID, "title": deref(r.PosTitle), "description": deref(r.PosDescription)}
	}
	if r.MgrID != nil {
		rec["manager"] = access.Record{"id": *r.MgrID, "firstName": deref(r.MgrFirst), "lastName": deref(r.MgrLast), "email": deref(r.MgrMail)}
	}
	if r.UsrID != nil {
		rec["user"] = access.Record{"id": *r.UsrID, "firstName": deref(r.UsrFirst), "lastName": deref(r.UsrLast), "email": deref(r.UsrMail)}
	}
	return rec
}

func setOptional(rec access.Record, key, value string) {
	if value == "" {
		rec[key] = nil
		return
	}
	rec[key] = value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringField(rec access.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}
