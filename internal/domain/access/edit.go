package access

import (
	"fmt"
	"slices"
)

// EditDecision partitions a proposed update into writable and denied fields.
type EditDecision struct {
	Allowed []string `json:"allowed"`
	Denied  []string `json:"denied"`
}

// ValidationResult is the strict form used to accept or reject a mutation.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateEdit classifies every key of proposed. It does not enforce
// anything; the caller decides whether to reject or apply the allowed subset.
func ValidateEdit(role Role, proposed Record, isOwnRecord bool) EditDecision {
	decision := EditDecision{Allowed: []string{}, Denied: []string{}}
	for field := range proposed {
		if CanEdit(role, field, isOwnRecord) {
			decision.Allowed = append(decision.Allowed, field)
		} else {
			decision.Denied = append(decision.Denied, field)
		}
	}
	slices.Sort(decision.Allowed)
	slices.Sort(decision.Denied)
	return decision
}

func CheckEdit(role Role, proposed Record, isOwnRecord bool) ValidationResult {
	decision := ValidateEdit(role, proposed, isOwnRecord)
	errs := make([]string, 0, len(decision.Denied))
	for _, field := range decision.Denied {
		errs = append(errs, fmt.Sprintf("You don't have permission to edit field: %s", field))
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Apply returns only the writable subset of proposed.
func (d EditDecision) Apply(proposed Record) Record {
	out := make(Record, len(d.Allowed))
	for _, field := range d.Allowed {
		if v, ok := proposed[field]; ok {
			out[field] = v
		}
	}
	return out
}
