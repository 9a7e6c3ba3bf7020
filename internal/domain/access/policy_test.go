package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownRoleFailsClosed(t *testing.T) {
	unknown := Role("nonexistent-role")
	for _, field := range []string{"", "firstName", "salary", "id", "madeUpField123", "*"} {
		for _, own := range []bool{false, true} {
			assert.False(t, CanView(unknown, field, own), "view %q own=%v", field, own)
			assert.False(t, CanEdit(unknown, field, own), "edit %q own=%v", field, own)
		}
	}
	assert.False(t, CanAccessSensitive(unknown))

	_, ok := PolicyFor(unknown)
	assert.False(t, ok)
}

func TestAdminWildcardGrantsEverything(t *testing.T) {
	for _, field := range []string{"madeUpField123", "salary", "bankAccountNumber", "", "x.y.z"} {
		assert.True(t, CanView(RoleAdmin, field, false), field)
		assert.True(t, CanEdit(RoleAdmin, field, false), field)
	}
	assert.True(t, CanAccessSensitive(RoleAdmin))
}

func TestExactAndPrefixMatching(t *testing.T) {
	assert.True(t, CanView(RoleEmployee, "firstName", false))
	assert.True(t, CanView(RoleEmployee, "emergencyContactRelation", false))
	assert.True(t, CanView(RoleEmployee, "emergencyContactPhone", true))
	assert.False(t, CanView(RoleEmployee, "emergencyContac", false))
	assert.False(t, CanView(RoleEmployee, "bankAccountNumber", true))
	assert.False(t, CanView(RoleEmployee, "salary", true))

	assert.True(t, CanView(RoleManager, "status", false))
	assert.False(t, CanView(RoleManager, "managerId", false))
	assert.True(t, CanView(RoleHR, "salary", false))
}

func TestOwnRecordDoesNotWidenPermissions(t *testing.T) {
	for _, role := range Roles {
		for _, field := range []string{"bankAccountNumber", "salary", "aadhaarNumber", "managerId", "status"} {
			assert.Equal(t, CanView(role, field, false), CanView(role, field, true), "%s view %s", role, field)
			assert.Equal(t, CanEdit(role, field, false), CanEdit(role, field, true), "%s edit %s", role, field)
		}
	}
}

func TestSensitiveAccessFlags(t *testing.T) {
	assert.True(t, CanAccessSensitive(RoleAdmin))
	assert.True(t, CanAccessSensitive(RoleHR))
	assert.False(t, CanAccessSensitive(RoleManager))
	assert.False(t, CanAccessSensitive(RoleEmployee))
}

func TestMatchFieldPrefixWildcard(t *testing.T) {
	patterns := []string{"status", "bank*"}
	assert.True(t, matchField(patterns, "status"))
	assert.True(t, matchField(patterns, "bankName"))
	assert.True(t, matchField(patterns, "bank"))
	assert.False(t, matchField(patterns, "salary"))
	assert.False(t, matchField(nil, "status"))
}

func TestPolicyForReturnsCopy(t *testing.T) {
	p, ok := PolicyFor(RoleManager)
	require.True(t, ok)
	p.Edit[0] = "salary"
	p.Edit = append(p.Edit, "bankAccountNumber")

	assert.False(t, CanEdit(RoleManager, "salary", false))
	assert.False(t, CanEdit(RoleManager, "bankAccountNumber", false))
	assert.True(t, CanEdit(RoleManager, "departmentId", false))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" HR ")
	require.True(t, ok)
	assert.Equal(t, RoleHR, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestEditableFieldsAreViewable(t *testing.T) {
	for _, role := range Roles {
		p, ok := PolicyFor(role)
		require.True(t, ok)
		for _, field := range p.Edit {
			assert.True(t, CanView(role, field, false), "%s can edit %s but not view it", role, field)
		}
	}
}

func TestFieldSets(t *testing.T) {
	assert.True(t, IsSensitive("salary"))
	assert.True(t, IsAuditable("salary"))
	assert.True(t, IsAuditable("departmentId"))
	assert.False(t, IsSensitive("departmentId"))
	assert.True(t, IsSensitive("esiNumber"))
	assert.False(t, IsAuditable("esiNumber"))
	assert.Len(t, SensitiveFields(), 8)
	assert.Len(t, AuditFields(), 9)
}
