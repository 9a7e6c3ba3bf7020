package access

import (
	"reflect"
	"slices"
	"time"
)

// AuditRecord describes one audit-worthy field mutation. IPAddress and
// UserAgent are left nil for the HTTP layer to fill in.
type AuditRecord struct {
	Action    string    `json:"action"`
	EntityID  string    `json:"entityId"`
	FieldName string    `json:"fieldName"`
	OldValue  any       `json:"oldValue"`
	NewValue  any       `json:"newValue"`
	ActorID   string    `json:"actorId"`
	ActorRole Role      `json:"actorRole"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress *string   `json:"ipAddress"`
	UserAgent *string   `json:"userAgent"`
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// RecordIfAuditable returns nil for fields outside the audit set. Sensitive
// values are masked independently of who made the change.
func RecordIfAuditable(action, entityID, field string, oldValue, newValue any, actorID string, actorRole Role) *AuditRecord {
	if !IsAuditable(field) {
		return nil
	}
	if IsSensitive(field) {
		oldValue, newValue = Restricted, Restricted
	}
	return &AuditRecord{
		Action:    action,
		EntityID:  entityID,
		FieldName: field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ActorID:   actorID,
		ActorRole: actorRole,
		Timestamp: now(),
	}
}

// DiffAuditable produces a record for every auditable key of after whose
// value differs from before, in field-name order. Missing, nil and empty
// string values all mean "unset" and never differ from each other.
func DiffAuditable(action, entityID string, before, after Record, actorID string, actorRole Role) []AuditRecord {
	fields := make([]string, 0, len(after))
	for field := range after {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var out []AuditRecord
	for _, field := range fields {
		oldValue := before[field]
		newValue := after[field]
		if sameValue(oldValue, newValue) {
			continue
		}
		if rec := RecordIfAuditable(action, entityID, field, oldValue, newValue, actorID, actorRole); rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

func sameValue(a, b any) bool {
	if isBlank(a) && isBlank(b) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// WithRequestMeta stamps the origin of the request onto the record.
func (r *AuditRecord) WithRequestMeta(ip, userAgent string) {
	if ip != "" {
		r.IPAddress = &ip
	}
	if userAgent != "" {
		r.UserAgent = &userAgent
	}
}
