package employees

import (
	"context"

	"hrmaccess/internal/domain/access"
)

type StoreAPI interface {
	List(ctx context.Context, filter ListFilter) ([]access.Record, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Get(ctx context.Context, employeeID string) (access.Record, error)
	Update(ctx context.Context, employeeID string, changes access.Record) error
	// UpdateMany applies the same changes to every employee or to none.
	UpdateMany(ctx context.Context, employeeIDs []string, changes access.Record) error
}

// AuditSink receives audit records produced by mutations. Write failures
// are logged by the service and never fail the mutation.
type AuditSink interface {
	Write(ctx context.Context, records []access.AuditRecord) error
}

// ListFilter scopes a listing. With both ids set the result is the
// manager's direct reports plus the employee itself. Search matches first
// name, last name, email or employee code. A zero Limit means no limit.
type ListFilter struct {
	ManagerID    string
	EmployeeID   string
	Search       string
	DepartmentID string
	Status       string
	Limit        int
	Offset       int
}
