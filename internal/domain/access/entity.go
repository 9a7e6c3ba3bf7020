package access

import (
	"maps"
	"slices"
)

type EntityType string

const (
	EntityEmployees  EntityType = "employees"
	EntityTimesheets EntityType = "timesheets"
	EntityLeave      EntityType = "leave"
	EntityPayrolls   EntityType = "payrolls"
	EntityUsers      EntityType = "users"
)

// Actor identifies the caller for the hard self-record boundary.
type Actor struct {
	UserID     string
	EmployeeID string
}

// responseFields is the coarse per-entity read allow-list.
var responseFields = map[Role]map[EntityType][]string{
	RoleAdmin: {
		EntityEmployees:  {Wildcard},
		EntityTimesheets: {Wildcard},
		EntityLeave:      {Wildcard},
		EntityPayrolls:   {Wildcard},
		EntityUsers:      {Wildcard},
	},
	RoleHR: {
		EntityEmployees: {
			"id", "employeeId", "firstName", "lastName", "email", "phone", "departmentId", "positionId",
			"hireDate", "employmentType", "status", "managerId", "address", "city",
			"state", "pinCode", "dateOfBirth", "gender", "maritalStatus", "nationality",
			"workLocation", "probationPeriod", "noticePeriod", "emergencyContactName",
			"emergencyContactPhone", "emergencyContactRelation", "joiningDate", "confirmationDate",
			"aadhaarNumber", "panNumber", "uanNumber", "pfNumber", "esiNumber",
			"bankName", "bankAccountNumber", "ifscCode", "bankBranch", "accountHolderName",
			"userId", "createdAt", "updatedAt",
		},
		EntityTimesheets: {
			"employeeId", "projectId", "taskId", "workDate", "hoursWorked", "description", "status",
			"submittedAt", "approvedAt", "clockInTime", "clockOutTime", "breakHours",
		},
		EntityLeave:    {Wildcard},
		EntityPayrolls: {Wildcard},
		EntityUsers:    {"id", "firstName", "lastName", "email", "role", "isActive", "lastLoginAt", "createdAt", "updatedAt"},
	},
	RoleManager: {
		EntityEmployees: {
			"id", "employeeId", "firstName", "lastName", "email", "phone", "departmentId", "positionId",
			"status", "workLocation", "emergencyContactName", "emergencyContactPhone", "hireDate",
			"employmentType", "userId",
		},
		EntityTimesheets: {Wildcard},
		EntityLeave:      {Wildcard},
		EntityPayrolls:   {"employeeId", "month", "year", "status", "processedAt"},
		EntityUsers:      {"id", "firstName", "lastName", "email", "role", "isActive"},
	},
	RoleEmployee: {
		EntityEmployees: {
			"id", "firstName", "lastName", "email", "phone", "address", "city", "state", "pinCode",
			"emergencyContactName", "emergencyContactPhone",
		},
		EntityTimesheets: {
			"projectId", "taskId", "workDate", "hoursWorked", "description", "status",
			"clockInTime", "clockOutTime", "breakHours",
		},
		EntityLeave:    {"leaveTypeId", "startDate", "endDate", "reason", "isHalfDay", "halfDayType", "status"},
		EntityPayrolls: {"month", "year", "grossSalary", "netSalary", "workingDays", "actualWorkingDays", "leaveDays"},
		EntityUsers:    {"id", "firstName", "lastName", "email"},
	},
}

// modifyFields is stricter than responseFields and feeds CanModifyFields.
var modifyFields = map[Role]map[EntityType][]string{
	RoleAdmin: {
		EntityEmployees:  {Wildcard},
		EntityTimesheets: {Wildcard},
		EntityLeave:      {Wildcard},
		EntityPayrolls:   {Wildcard},
	},
	RoleHR: {
		EntityEmployees:  {"firstName", "lastName", "phone", "address", "departmentId", "positionId", "status", "managerId"},
		EntityTimesheets: {"status", "approverComments"},
		EntityLeave:      {"status", "approverComments"},
		EntityPayrolls:   {Wildcard},
	},
	RoleManager: {
		EntityEmployees:  {"status"},
		EntityTimesheets: {"status", "approverComments"},
		EntityLeave:      {"status", "approverComments"},
		EntityPayrolls:   {},
	},
	RoleEmployee: {
		EntityEmployees:  {"phone", "address", "emergencyContactName", "emergencyContactPhone"},
		EntityTimesheets: {"projectId", "taskId", "workDate", "hoursWorked", "description", "clockInTime", "clockOutTime", "breakHours"},
		EntityLeave:      {"leaveTypeId", "startDate", "endDate", "reason", "isHalfDay", "halfDayType"},
		EntityPayrolls:   {},
	},
}

// FilterEntity applies the per-entity allow-list to one record. Unlike
// FilterRecord there is no masking pass; instead an employee reading someone
// else's employee record gets an empty object.
func FilterEntity(role Role, entity EntityType, record Record, actor Actor) Record {
	if record == nil {
		return nil
	}
	allowed, ok := responseFields[role][entity]
	if !ok {
		return Record{}
	}
	if slices.Contains(allowed, Wildcard) {
		return maps.Clone(record)
	}
	if role == RoleEmployee && entity == EntityEmployees && !actor.owns(record) {
		return Record{}
	}

	out := make(Record, len(allowed)+1)
	if id, ok := record["id"]; ok && !isBlank(id) {
		out["id"] = id
	}
	for _, field := range allowed {
		value, ok := record[field]
		if !ok {
			continue
		}
		if rel, isRelation := relations[field]; isRelation {
			if nested, isObject := value.(Record); isObject {
				out[field] = rel.project(role, nested)
				continue
			}
		}
		out[field] = value
	}
	return out
}

func FilterEntities(role Role, entity EntityType, records []Record, actor Actor) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = FilterEntity(role, entity, rec, actor)
	}
	return out
}

// FieldAccess partitions requested fields against the read allow-list.
type FieldAccess struct {
	Allowed []string `json:"allowed"`
	Denied  []string `json:"denied"`
}

func ValidateFieldAccess(role Role, entity EntityType, requested []string) FieldAccess {
	allowed := responseFields[role][entity]
	if slices.Contains(allowed, Wildcard) {
		return FieldAccess{Allowed: slices.Clone(requested), Denied: []string{}}
	}
	out := FieldAccess{Allowed: []string{}, Denied: []string{}}
	for _, field := range requested {
		if slices.Contains(allowed, field) {
			out.Allowed = append(out.Allowed, field)
		} else {
			out.Denied = append(out.Denied, field)
		}
	}
	return out
}

// CanModifyFields is an all-or-nothing gate: every field must be in the
// role's modify list for the entity. Unknown roles or entities are denied.
func CanModifyFields(role Role, entity EntityType, fields []string) bool {
	allowed, ok := modifyFields[role][entity]
	if !ok {
		return false
	}
	if slices.Contains(allowed, Wildcard) {
		return true
	}
	for _, field := range fields {
		if !slices.Contains(allowed, field) {
			return false
		}
	}
	return true
}

func (a Actor) owns(record Record) bool {
	if a.EmployeeID != "" && stringValue(record["id"]) == a.EmployeeID {
		return true
	}
	return a.UserID != "" && stringValue(record["userId"]) == a.UserID
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
