package access

import (
	"slices"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Roles lists every role that has a policy entry.
var Roles = []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

// ParseRole maps an untyped role name, as found in a token, onto a known role.
func ParseRole(name string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := policies[role]; !ok {
		return "", false
	}
	return role, true
}

const (
	// Wildcard grants every field when it appears alone in a pattern list.
	Wildcard = "*"
	// Restricted replaces sensitive values the viewer may not read, and every
	// sensitive value inside an audit record.
	Restricted = "***RESTRICTED***"
)

type Policy struct {
	View      []string `json:"view"`
	Edit      []string `json:"edit"`
	Sensitive bool     `json:"sensitive"`
}

var policies = map[Role]Policy{
	RoleAdmin: {
		View:      []string{Wildcard},
		Edit:      []string{Wildcard},
		Sensitive: true,
	},
	RoleHR: {
		View: []string{
			// personal
			"firstName", "lastName", "email", "phone", "dateOfBirth", "gender",
			"maritalStatus", "nationality", "address", "city", "state", "pinCode",
			"photoUrl",
			// employment
			"employeeId", "hireDate", "joiningDate", "confirmationDate", "departmentId",
			"positionId", "managerId", "employmentType", "workLocation", "status",
			"probationPeriod", "noticePeriod", "resignationDate", "lastWorkingDate",
			"emergencyContactName", "emergencyContactPhone", "emergencyContactRelation",
			// statutory
			"aadhaarNumber", "panNumber", "uanNumber", "pfNumber", "esiNumber",
			// banking
			"bankName", "bankAccountNumber", "ifscCode", "bankBranch", "accountHolderName",
			"salary", "salaryStructure",
			"userId", "user",
		},
		Edit: []string{
			"firstName", "lastName", "email", "phone", "dateOfBirth", "gender",
			"maritalStatus", "nationality", "hireDate", "departmentId",
			"positionId", "managerId", "employmentType", "workLocation", "status",
			"emergencyContactName", "emergencyContactPhone", "emergencyContactRelation",
			"address", "city", "state", "pinCode", "aadhaarNumber", "panNumber",
			"bankName", "bankAccountNumber", "ifscCode", "bankBranch", "accountHolderName",
			"joiningDate", "confirmationDate", "resignationDate", "lastWorkingDate",
		},
		Sensitive: true,
	},
	RoleManager: {
		View: []string{
			"firstName", "lastName", "email", "phone", "employeeId",
			"hireDate", "departmentId", "positionId", "employmentType", "workLocation",
			"status", "photoUrl",
			"emergencyContactName", "emergencyContactPhone",
			"address", "city", "state",
			"userId", "user",
		},
		Edit:      []string{"departmentId", "positionId", "workLocation", "status"},
		Sensitive: false,
	},
	RoleEmployee: {
		View: []string{
			"firstName", "lastName", "email", "phone", "employeeId",
			"hireDate", "departmentId", "positionId", "employmentType",
			"address", "city", "state", "pinCode", "photoUrl",
			"dateOfBirth", "gender", "maritalStatus", "nationality",
			"emergencyContact*",
			// bank account number stays hidden
			"bankName", "ifscCode", "bankBranch",
			"userId", "user",
		},
		Edit: []string{
			"phone", "address", "city", "state", "pinCode",
			"emergencyContactName", "emergencyContactPhone", "emergencyContactRelation",
		},
		Sensitive: false,
	},
}

var sensitiveFields = fieldSet(
	"aadhaarNumber",
	"panNumber",
	"bankAccountNumber",
	"salary",
	"salaryStructure",
	"uanNumber",
	"pfNumber",
	"esiNumber",
)

var auditFields = fieldSet(
	"status",
	"departmentId",
	"positionId",
	"managerId",
	"salary",
	"salaryStructure",
	"aadhaarNumber",
	"panNumber",
	"bankAccountNumber",
)

func fieldSet(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out
}

// PolicyFor returns a copy of the role's entry so callers cannot alter the table.
func PolicyFor(role Role) (Policy, bool) {
	p, ok := policies[role]
	if !ok {
		return Policy{}, false
	}
	return Policy{View: slices.Clone(p.View), Edit: slices.Clone(p.Edit), Sensitive: p.Sensitive}, true
}

// CanView reports whether role may see field. isOwnRecord never widens the
// role's view list; ownership only lifts masking in FilterRecord.
func CanView(role Role, field string, isOwnRecord bool) bool {
	p, ok := policies[role]
	if !ok {
		return false
	}
	return matchField(p.View, field)
}

func CanEdit(role Role, field string, isOwnRecord bool) bool {
	p, ok := policies[role]
	if !ok {
		return false
	}
	return matchField(p.Edit, field)
}

func CanAccessSensitive(role Role) bool {
	return policies[role].Sensitive
}

func IsSensitive(field string) bool {
	_, ok := sensitiveFields[field]
	return ok
}

func IsAuditable(field string) bool {
	_, ok := auditFields[field]
	return ok
}

// SensitiveFields returns the masked field names in sorted order.
func SensitiveFields() []string {
	return sortedKeys(sensitiveFields)
}

// AuditFields returns the audit-required field names in sorted order.
func AuditFields() []string {
	return sortedKeys(auditFields)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// matchField checks a field against exact names, the bare wildcard, and
// trailing-wildcard prefixes such as "emergencyContact*".
func matchField(patterns []string, field string) bool {
	if slices.Contains(patterns, Wildcard) || slices.Contains(patterns, field) {
		return true
	}
	for _, pattern := range patterns {
		prefix, ok := strings.CutSuffix(pattern, Wildcard)
		if ok && prefix != "" && strings.HasPrefix(field, prefix) {
			return true
		}
	}
	return false
}
