package employees

import (
	"context"
	"errors"
	"maps"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmaccess/internal/domain/access"
)

type memoryStore struct {
	records   map[string]access.Record
	updateErr error
}

func newMemoryStore(records ...access.Record) *memoryStore {
	s := &memoryStore{records: map[string]access.Record{}}
	for _, rec := range records {
		s.records[rec["id"].(string)] = rec
	}
	return s
}

func (m *memoryStore) matching(filter ListFilter) []access.Record {
	var out []access.Record
	for _, rec := range m.records {
		switch {
		case filter.ManagerID != "" && filter.EmployeeID != "":
			if rec["managerId"] != filter.ManagerID && rec["id"] != filter.EmployeeID {
				continue
			}
		case filter.ManagerID != "":
			if rec["managerId"] != filter.ManagerID {
				continue
			}
		case filter.EmployeeID != "":
			if rec["id"] != filter.EmployeeID {
				continue
			}
		}
		if filter.Search != "" {
			name, _ := rec["firstName"].(string)
			if !strings.Contains(strings.ToLower(name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		if filter.DepartmentID != "" && rec["departmentId"] != filter.DepartmentID {
			continue
		}
		if filter.Status != "" && rec["status"] != filter.Status {
			continue
		}
		out = append(out, maps.Clone(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i]["id"].(string) < out[j]["id"].(string) })
	return out
}

func (m *memoryStore) List(_ context.Context, filter ListFilter) ([]access.Record, error) {
	out := m.matching(filter)
	if filter.Limit > 0 {
		out = out[min(filter.Offset, len(out)):min(filter.Offset+filter.Limit, len(out))]
	}
	return out, nil
}

func (m *memoryStore) Count(_ context.Context, filter ListFilter) (int, error) {
	return len(m.matching(filter)), nil
}

func (m *memoryStore) Get(_ context.Context, id string) (access.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(rec), nil
}

func (m *memoryStore) Update(_ context.Context, id string, changes access.Record) error {
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	maps.Copy(rec, changes)
	return nil
}

func (m *memoryStore) UpdateMany(ctx context.Context, ids []string, changes access.Record) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, id := range ids {
		if _, ok := m.records[id]; !ok {
			return ErrNotFound
		}
	}
	for _, id := range ids {
		if err := m.Update(ctx, id, changes); err != nil {
			return err
		}
	}
	return nil
}

type memorySink struct {
	records []access.AuditRecord
	err     error
}

func (s *memorySink) Write(_ context.Context, records []access.AuditRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func fixture() *memoryStore {
	return newMemoryStore(
		access.Record{"id": "E1", "userId": "U1", "firstName": "Maria", "status": "Active", "managerId": nil, "salary": 90000.0},
		access.Record{"id": "E2", "userId": "U2", "firstName": "Ravi", "status": "Active", "managerId": "E1", "salary": 50000.0, "bankAccountNumber": "111"},
		access.Record{"id": "E3", "userId": "U3", "firstName": "Li", "status": "Active", "managerId": "E1", "departmentId": "D1"},
		access.Record{"id": "E4", "userId": "U4", "firstName": "Sam", "status": "Active", "managerId": "E9"},
	)
}

func TestListScopesByRole(t *testing.T) {
	ctx := context.Background()
	svc := NewService(fixture(), nil, nil)

	all, total, err := svc.List(ctx, access.NewGuard(access.RoleHR, "U0", ""), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 4, total)
	assert.Equal(t, 90000.0, all[0]["salary"])

	team, _, err := svc.List(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, team, 3)
	for _, rec := range team {
		assert.NotContains(t, rec, "salary")
	}

	self, _, err := svc.List(ctx, access.NewGuard(access.RoleEmployee, "U2", "E2"), ListQuery{})
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, "Ravi", self[0]["firstName"])
	assert.NotContains(t, self[0], "bankAccountNumber")

	none, total, err := svc.List(ctx, access.NewGuard(access.Role("ghost"), "U2", "E2"), ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(fixture(), nil, nil)
	hr := access.NewGuard(access.RoleHR, "U0", "")

	page, total, err := svc.List(ctx, hr, ListQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Ravi", page[0]["firstName"])
	assert.Equal(t, "Li", page[1]["firstName"])

	found, total, err := svc.List(ctx, hr, ListQuery{Search: "RAV"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "Ravi", found[0]["firstName"])

	found, _, err = svc.List(ctx, hr, ListQuery{DepartmentID: "D1", Status: "Active"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Li", found[0]["firstName"])

	// Filters never widen a manager's reach.
	found, total, err = svc.List(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), ListQuery{Search: "sam"})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Zero(t, total)
}

func TestGetEnforcesReach(t *testing.T) {
	ctx := context.Background()
	svc := NewService(fixture(), nil, nil)

	_, err := svc.Get(ctx, access.NewGuard(access.RoleEmployee, "U2", "E2"), "E3")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), "E4")
	assert.ErrorIs(t, err, ErrForbidden)

	rec, err := svc.Get(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), "E3")
	require.NoError(t, err)
	assert.Equal(t, "D1", rec["departmentId"])

	_, err = svc.Get(ctx, access.NewGuard(access.RoleHR, "U0", ""), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeam(t *testing.T) {
	ctx := context.Background()
	svc := NewService(fixture(), nil, nil)

	team, err := svc.Team(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), "E1")
	require.NoError(t, err)
	assert.Len(t, team, 2)

	_, err = svc.Team(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), "E9")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Team(ctx, access.NewGuard(access.RoleEmployee, "U2", "E2"), "E1")
	assert.ErrorIs(t, err, ErrForbidden)

	team, err = svc.Team(ctx, access.NewGuard(access.RoleHR, "U0", ""), "E9")
	require.NoError(t, err)
	assert.Len(t, team, 1)
}

func TestUpdateRejectsWholeMutationOnDenial(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	sink := &memorySink{}
	svc := NewService(store, sink, nil)

	_, err := svc.Update(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), "E2", access.Record{"status": "Inactive", "salary": 99999}, RequestMeta{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"You don't have permission to edit field: salary"}, verr.Errors)
	assert.Equal(t, "Active", store.records["E2"]["status"])
	assert.Empty(t, sink.records)
}

func TestUpdateAuditsAndFilters(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	sink := &memorySink{}
	svc := NewService(store, sink, nil)

	meta := RequestMeta{IP: "10.1.1.1", UserAgent: "curl/8"}
	out, err := svc.Update(ctx, access.NewGuard(access.RoleManager, "U1", "E1"), "E2", access.Record{"status": "Inactive", "departmentId": "D2", "workLocation": "Remote"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "Inactive", out["status"])
	assert.NotContains(t, out, "salary")

	require.Len(t, sink.records, 2)
	assert.Equal(t, "departmentId", sink.records[0].FieldName)
	assert.Nil(t, sink.records[0].OldValue)
	assert.Equal(t, "status", sink.records[1].FieldName)
	assert.Equal(t, "Active", sink.records[1].OldValue)
	require.NotNil(t, sink.records[1].IPAddress)
	assert.Equal(t, "10.1.1.1", *sink.records[1].IPAddress)
	assert.Equal(t, "U1", sink.records[1].ActorID)
}

func TestUpdateMasksSensitiveAuditValues(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	svc := NewService(fixture(), sink, nil)

	_, err := svc.Update(ctx, access.NewGuard(access.RoleAdmin, "U0", ""), "E2", access.Record{"salary": 60000.0}, RequestMeta{})
	require.NoError(t, err)
	require.Len(t, sink.records, 1)
	assert.Equal(t, access.Restricted, sink.records[0].OldValue)
	assert.Equal(t, access.Restricted, sink.records[0].NewValue)
}

func TestUpdateSurvivesSinkFailure(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	svc := NewService(store, &memorySink{err: errors.New("sink down")}, nil)

	_, err := svc.Update(ctx, access.NewGuard(access.RoleEmployee, "U2", "E2"), "E2", access.Record{"phone": "555"}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "555", store.records["E2"]["phone"])
}

func TestEmployeeCannotEditOthers(t *testing.T) {
	svc := NewService(fixture(), nil, nil)
	_, err := svc.Update(context.Background(), access.NewGuard(access.RoleEmployee, "U2", "E2"), "E3", access.Record{"phone": "1"}, RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBulkUpdate(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	sink := &memorySink{}
	svc := NewService(store, sink, nil)
	mgr := access.NewGuard(access.RoleManager, "U1", "E1")

	_, err := svc.BulkUpdate(ctx, mgr, []string{"E2", "E3"}, access.Record{"departmentId": "D2", "status": "Inactive"}, RequestMeta{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"You don't have permission to edit field: departmentId"}, verr.Errors)

	_, err = svc.BulkUpdate(ctx, mgr, []string{"E2", "E4"}, access.Record{"status": "Inactive"}, RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Active", store.records["E2"]["status"])

	n, err := svc.BulkUpdate(ctx, mgr, []string{"E2", "E3"}, access.Record{"status": "Inactive"}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Inactive", store.records["E3"]["status"])
	require.Len(t, sink.records, 2)
	assert.Equal(t, "bulk_update", sink.records[0].Action)

	_, err = svc.BulkUpdate(ctx, mgr, []string{"E2"}, access.Record{}, RequestMeta{})
	require.ErrorAs(t, err, &verr)
}

func TestBulkUpdateWritesNothingOnStoreFailure(t *testing.T) {
	store := fixture()
	store.updateErr = errors.New("tx aborted")
	sink := &memorySink{}
	svc := NewService(store, sink, nil)

	n, err := svc.BulkUpdate(context.Background(), access.NewGuard(access.RoleHR, "U0", ""), []string{"E2", "E3"}, access.Record{"status": "Terminated"}, RequestMeta{})
	assert.EqualError(t, err, "tx aborted")
	assert.Zero(t, n)
	assert.Equal(t, "Active", store.records["E2"]["status"])
	assert.Equal(t, "Active", store.records["E3"]["status"])
	assert.Empty(t, sink.records)
}

func TestBulkUpdateManagerWithoutEmployeeRecord(t *testing.T) {
	svc := NewService(fixture(), nil, nil)
	_, err := svc.BulkUpdate(context.Background(), access.NewGuard(access.RoleManager, "U7", ""), []string{"E1"}, access.Record{"status": "Inactive"}, RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)
}
