package employees

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrmaccess/internal/domain/access"
	"hrmaccess/internal/platform/metrics"
)

var tracer = otel.Tracer("hrmaccess/employees")

type Service struct {
	store   StoreAPI
	sink    AuditSink
	metrics *metrics.Collector
}

func NewService(store StoreAPI, sink AuditSink, m *metrics.Collector) *Service {
	return &Service{store: store, sink: sink, metrics: m}
}

func startSpan(ctx context.Context, name string, g access.Guard) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("actor.role", string(g.Role())),
		attribute.String("actor.user_id", g.Actor().UserID),
	))
}

// ListQuery narrows a listing within the actor's reach. A zero Limit
// returns every match.
type ListQuery struct {
	Search       string
	DepartmentID string
	Status       string
	Limit        int
	Offset       int
}

// List returns the employees visible to the actor: everyone for admin and
// hr, direct reports plus self for managers, self only for employees. The
// total counts every match before pagination.
func (s *Service) List(ctx context.Context, g access.Guard, q ListQuery) ([]access.Record, int, error) {
	ctx, span := startSpan(ctx, "employees.List", g)
	defer span.End()

	filter := ListFilter{
		Search:       q.Search,
		DepartmentID: q.DepartmentID,
		Status:       q.Status,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	self := g.Actor().EmployeeID
	switch g.Role() {
	case access.RoleAdmin, access.RoleHR:
	case access.RoleManager:
		if self == "" {
			return []access.Record{}, 0, nil
		}
		filter.ManagerID, filter.EmployeeID = self, self
	case access.RoleEmployee:
		if self == "" {
			return []access.Record{}, 0, nil
		}
		filter.EmployeeID = self
	default:
		return []access.Record{}, 0, nil
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	span.SetAttributes(attribute.Int("list.total", total))
	return g.FilterAll(records), total, nil
}

func (s *Service) Get(ctx context.Context, g access.Guard, employeeID string) (access.Record, error) {
	ctx, span := startSpan(ctx, "employees.Get", g)
	defer span.End()

	rec, err := s.load(ctx, g, employeeID)
	if err != nil {
		return nil, err
	}
	return g.Filter(rec), nil
}

// Team lists a manager's direct reports. Managers may only list their own team.
func (s *Service) Team(ctx context.Context, g access.Guard, managerID string) ([]access.Record, error) {
	ctx, span := startSpan(ctx, "employees.Team", g)
	defer span.End()

	switch g.Role() {
	case access.RoleAdmin, access.RoleHR:
	case access.RoleManager:
		if managerID == "" || managerID != g.Actor().EmployeeID {
			s.metrics.IncDecision("team", string(g.Role()), "denied")
			return nil, ErrForbidden
		}
	default:
		s.metrics.IncDecision("team", string(g.Role()), "denied")
		return nil, ErrForbidden
	}

	records, err := s.store.List(ctx, ListFilter{ManagerID: managerID})
	if err != nil {
		return nil, err
	}
	return g.FilterAll(records), nil
}

// Update rejects the whole change when any field is not editable by the
// actor. Accepted changes produce audit records for the sink.
func (s *Service) Update(ctx context.Context, g access.Guard, employeeID string, patch access.Record, meta RequestMeta) (access.Record, error) {
	ctx, span := startSpan(ctx, "employees.Update", g)
	defer span.End()

	before, err := s.load(ctx, g, employeeID)
	if err != nil {
		return nil, err
	}

	result := g.Validate(patch, g.Owns(before))
	if !result.IsValid {
		s.metrics.IncDecision("edit", string(g.Role()), "denied")
		span.SetAttributes(attribute.Int("edit.denied", len(result.Errors)))
		return nil, &ValidationError{Errors: result.Errors}
	}
	s.metrics.IncDecision("edit", string(g.Role()), "allowed")

	if err := s.store.Update(ctx, employeeID, patch); err != nil {
		return nil, err
	}
	s.audit(ctx, g.AuditChanges("update", employeeID, before, patch), meta)

	after, err := s.store.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return g.Filter(after), nil
}

// BulkUpdate applies the same fields to several employees in one store
// transaction. It is gated by the per-entity modify list, so every field
// must be modifiable or nothing is written. Managers may only target their
// direct reports. Audit records are emitted only after the write commits.
func (s *Service) BulkUpdate(ctx context.Context, g access.Guard, employeeIDs []string, fields access.Record, meta RequestMeta) (int, error) {
	ctx, span := startSpan(ctx, "employees.BulkUpdate", g)
	defer span.End()

	keys := slices.Sorted(maps.Keys(fields))
	if len(keys) == 0 || !g.CanModify(access.EntityEmployees, keys) {
		s.metrics.IncDecision("bulk_edit", string(g.Role()), "denied")
		return 0, &ValidationError{Errors: deniedModifyMessages(g, keys)}
	}

	befores := make([]access.Record, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		before, err := s.store.Get(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", id, err)
		}
		self := g.Actor().EmployeeID
		if g.Role() == access.RoleManager && (self == "" || stringField(before, "managerId") != self) {
			s.metrics.IncDecision("bulk_edit", string(g.Role()), "denied")
			return 0, fmt.Errorf("employee %s: %w", id, ErrForbidden)
		}
		befores = append(befores, before)
	}
	s.metrics.IncDecision("bulk_edit", string(g.Role()), "allowed")

	if err := s.store.UpdateMany(ctx, employeeIDs, fields); err != nil {
		return 0, err
	}
	var records []access.AuditRecord
	for i, id := range employeeIDs {
		records = append(records, g.AuditChanges("bulk_update", id, befores[i], fields)...)
	}
	s.audit(ctx, records, meta)
	span.SetAttributes(attribute.Int("bulk.updated", len(employeeIDs)))
	return len(employeeIDs), nil
}

func deniedModifyMessages(g access.Guard, keys []string) []string {
	if len(keys) == 0 {
		return []string{"no fields to update"}
	}
	var out []string
	for _, key := range keys {
		if !g.CanModify(access.EntityEmployees, []string{key}) {
			out = append(out, fmt.Sprintf("You don't have permission to edit field: %s", key))
		}
	}
	return out
}

// load fetches an employee and enforces record-level reach: employees only
// reach themselves, managers themselves and their direct reports.
func (s *Service) load(ctx context.Context, g access.Guard, employeeID string) (access.Record, error) {
	rec, err := s.store.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !s.reaches(g, rec) {
		s.metrics.IncDecision("reach", string(g.Role()), "denied")
		return nil, ErrForbidden
	}
	return rec, nil
}

func (s *Service) reaches(g access.Guard, rec access.Record) bool {
	switch g.Role() {
	case access.RoleAdmin, access.RoleHR:
		return true
	case access.RoleManager:
		self := g.Actor().EmployeeID
		return g.Owns(rec) || (self != "" && stringField(rec, "managerId") == self)
	case access.RoleEmployee:
		return g.Owns(rec)
	}
	return false
}

func (s *Service) audit(ctx context.Context, records []access.AuditRecord, meta RequestMeta) {
	if len(records) == 0 || s.sink == nil {
		return
	}
	for i := range records {
		records[i].WithRequestMeta(meta.IP, meta.UserAgent)
	}
	if err := s.sink.Write(ctx, records); err != nil {
		slog.Warn("audit write failed", "err", err, "requestId", meta.RequestID, "records", len(records))
		return
	}
	s.metrics.AddAuditRecords(len(records))
}
