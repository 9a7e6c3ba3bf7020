package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEntityWildcardReturnsCopy(t *testing.T) {
	record := Record{"id": "L1", "reason": "sick", "status": "pending"}
	out := FilterEntity(RoleHR, EntityLeave, record, Actor{})
	assert.Equal(t, record, out)

	out["status"] = "approved"
	assert.Equal(t, "pending", record["status"])
}

func TestFilterEntityForcesID(t *testing.T) {
	record := Record{"id": "T1", "projectId": "P1", "employeeId": "E7", "hoursWorked": 8}
	out := FilterEntity(RoleEmployee, EntityTimesheets, record, Actor{EmployeeID: "E7"})
	assert.Equal(t, Record{"id": "T1", "projectId": "P1", "hoursWorked": 8}, out)
}

func TestFilterEntityEmployeeSelfBoundary(t *testing.T) {
	actor := Actor{UserID: "U1", EmployeeID: "E1"}
	other := Record{"id": "E2", "userId": "U2", "firstName": "Bob", "salary": 10}
	own := Record{"id": "E1", "userId": "U1", "firstName": "Ann", "salary": 10}
	byUser := Record{"id": "E9", "userId": "U1", "firstName": "Ann"}

	assert.Equal(t, Record{}, FilterEntity(RoleEmployee, EntityEmployees, other, actor))
	assert.Equal(t, Record{"id": "E1", "firstName": "Ann"}, FilterEntity(RoleEmployee, EntityEmployees, own, actor))
	assert.Equal(t, Record{"id": "E9", "firstName": "Ann"}, FilterEntity(RoleEmployee, EntityEmployees, byUser, actor))

	// empty actor ids never match records that lack ids
	assert.Equal(t, Record{}, FilterEntity(RoleEmployee, EntityEmployees, Record{"firstName": "X"}, Actor{}))

	// managers get graduated filtering instead of the collapse
	mgr := FilterEntity(RoleManager, EntityEmployees, other, actor)
	assert.Equal(t, Record{"id": "E2", "userId": "U2", "firstName": "Bob"}, mgr)
}

func TestFilterEntitiesKeepsLength(t *testing.T) {
	actor := Actor{EmployeeID: "E1"}
	out := FilterEntities(RoleEmployee, EntityEmployees, []Record{{"id": "E1"}, {"id": "E2"}, nil}, actor)
	require.Len(t, out, 3)
	assert.Equal(t, Record{"id": "E1"}, out[0])
	assert.Equal(t, Record{}, out[1])
	assert.Nil(t, out[2])
}

func TestFilterEntityUnknownRoleOrEntity(t *testing.T) {
	assert.Equal(t, Record{}, FilterEntity(Role("ghost"), EntityUsers, Record{"id": "U1", "email": "a"}, Actor{}))
	assert.Equal(t, Record{}, FilterEntity(RoleHR, EntityType("assets"), Record{"id": "A1"}, Actor{}))
}

func TestFilterEntityUsers(t *testing.T) {
	record := Record{"id": "U1", "email": "a@example.com", "role": "hr", "passwordHash": "x", "lastLoginAt": "t"}
	assert.Equal(t, Record{"id": "U1", "email": "a@example.com", "role": "hr"}, FilterEntity(RoleManager, EntityUsers, record, Actor{}))
	assert.Equal(t, Record{"id": "U1", "email": "a@example.com", "role": "hr", "lastLoginAt": "t"}, FilterEntity(RoleHR, EntityUsers, record, Actor{}))
}

func TestValidateFieldAccess(t *testing.T) {
	got := ValidateFieldAccess(RoleManager, EntityPayrolls, []string{"month", "netSalary", "status"})
	assert.Equal(t, []string{"month", "status"}, got.Allowed)
	assert.Equal(t, []string{"netSalary"}, got.Denied)

	got = ValidateFieldAccess(RoleAdmin, EntityPayrolls, []string{"netSalary"})
	assert.Equal(t, []string{"netSalary"}, got.Allowed)
	assert.Empty(t, got.Denied)

	got = ValidateFieldAccess(Role("ghost"), EntityPayrolls, []string{"month"})
	assert.Empty(t, got.Allowed)
	assert.Equal(t, []string{"month"}, got.Denied)
}
