package access

// Guard binds the access operations to one authenticated actor. Handlers
// build it once per request and pass it down explicitly.
type Guard struct {
	role  Role
	actor Actor
}

func NewGuard(role Role, userID, employeeID string) Guard {
	return Guard{role: role, actor: Actor{UserID: userID, EmployeeID: employeeID}}
}

func (g Guard) Role() Role {
	return g.role
}

func (g Guard) Actor() Actor {
	return g.actor
}

// Owns reports whether record belongs to the actor, by employee id or user id.
func (g Guard) Owns(record Record) bool {
	if record == nil {
		return false
	}
	return g.actor.owns(record)
}

func (g Guard) CanView(field string, isOwnRecord bool) bool {
	return CanView(g.role, field, isOwnRecord)
}

func (g Guard) CanEdit(field string, isOwnRecord bool) bool {
	return CanEdit(g.role, field, isOwnRecord)
}

func (g Guard) CanAccessSensitive() bool {
	return CanAccessSensitive(g.role)
}

func (g Guard) Filter(record Record) Record {
	return FilterRecord(g.role, record, g.Owns(record))
}

func (g Guard) FilterAll(records []Record) []Record {
	return FilterCollection(g.role, records, g.Owns)
}

func (g Guard) Validate(proposed Record, isOwnRecord bool) ValidationResult {
	return CheckEdit(g.role, proposed, isOwnRecord)
}

func (g Guard) Audit(action, entityID, field string, oldValue, newValue any) *AuditRecord {
	return RecordIfAuditable(action, entityID, field, oldValue, newValue, g.actor.UserID, g.role)
}

func (g Guard) AuditChanges(action, entityID string, before, after Record) []AuditRecord {
	return DiffAuditable(action, entityID, before, after, g.actor.UserID, g.role)
}

func (g Guard) FilterEntity(entity EntityType, record Record) Record {
	return FilterEntity(g.role, entity, record, g.actor)
}

func (g Guard) FilterEntities(entity EntityType, records []Record) []Record {
	return FilterEntities(g.role, entity, records, g.actor)
}

func (g Guard) FieldAccess(entity EntityType, requested []string) FieldAccess {
	return ValidateFieldAccess(g.role, entity, requested)
}

func (g Guard) CanModify(entity EntityType, fields []string) bool {
	return CanModifyFields(g.role, entity, fields)
}

// Permissions describes the actor's policy entry for clients that mirror it.
type Permissions struct {
	Role            Role     `json:"role"`
	View            []string `json:"view"`
	Edit            []string `json:"edit"`
	Sensitive       bool     `json:"sensitive"`
	SensitiveFields []string `json:"sensitiveFields"`
	AuditFields     []string `json:"auditFields"`
}

func (g Guard) Permissions() Permissions {
	p, _ := PolicyFor(g.role)
	if p.View == nil {
		p.View = []string{}
	}
	if p.Edit == nil {
		p.Edit = []string{}
	}
	return Permissions{
		Role:            g.role,
		View:            p.View,
		Edit:            p.Edit,
		Sensitive:       p.Sensitive,
		SensitiveFields: SensitiveFields(),
		AuditFields:     AuditFields(),
	}
}
