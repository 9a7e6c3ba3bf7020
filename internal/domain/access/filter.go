package access

// Record is a JSON-shaped object as materialized by the store layer.
type Record = map[string]any

type relationKind int

const (
	relationOrg relationKind = iota + 1
	relationPerson
)

type relation struct {
	kind       relationKind
	foreignKey string
}

// relations maps denormalized relation keys to the foreign key the policy
// tables enumerate for them.
var relations = map[string]relation{
	"department": {kind: relationOrg, foreignKey: "departmentId"},
	"position":   {kind: relationOrg, foreignKey: "positionId"},
	"manager":    {kind: relationPerson, foreignKey: "managerId"},
	"user":       {kind: relationPerson, foreignKey: "userId"},
}

func (r relation) project(viewer Role, nested Record) Record {
	switch r.kind {
	case relationOrg:
		name := nested["name"]
		if isBlank(name) {
			name = nested["title"]
		}
		out := Record{"id": nested["id"], "name": name}
		if desc, ok := nested["description"]; ok && !isBlank(desc) {
			out["description"] = desc
		}
		return out
	case relationPerson:
		out := Record{
			"id":        nested["id"],
			"firstName": nested["firstName"],
			"lastName":  nested["lastName"],
		}
		if email, ok := nested["email"]; ok && !isBlank(email) && viewer != RoleEmployee {
			out["email"] = email
		}
		return out
	}
	return Record{}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// FilterRecord returns a copy of record holding only what role may see.
// Fields outside the role's view list are omitted; viewable sensitive fields
// are masked unless the role has sensitive access or the record is the
// viewer's own.
func FilterRecord(role Role, record Record, isOwnRecord bool) Record {
	if record == nil {
		return nil
	}
	return filterWithPolicy(policies[role], role, record, isOwnRecord)
}

func filterWithPolicy(p Policy, role Role, record Record, isOwnRecord bool) Record {
	unmask := p.Sensitive || isOwnRecord

	out := make(Record, len(record))
	for field, value := range record {
		if rel, ok := relations[field]; ok {
			if nested, isObject := value.(Record); isObject {
				if matchField(p.View, rel.foreignKey) {
					out[field] = rel.project(role, nested)
				}
				continue
			}
		}

		if !matchField(p.View, field) {
			continue
		}
		if IsSensitive(field) && !unmask {
			out[field] = Restricted
			continue
		}
		out[field] = value
	}
	return out
}

// FilterCollection filters each record independently. isOwn is evaluated per
// record so mixed listings (a manager's team plus the manager) unmask only
// the caller's own entry. The result always has len(records) elements.
func FilterCollection(role Role, records []Record, isOwn func(Record) bool) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		own := isOwn != nil && isOwn(rec)
		out[i] = FilterRecord(role, rec, own)
	}
	return out
}
