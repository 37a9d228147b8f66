package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"bcfkit/internal/bcferr"
)

// dateLayouts are the xs:dateTime shapes accepted in BCF files.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02Z07:00",
	"2006-01-02",
}

// IDRules controls how identifiers are checked.
type IDRules struct {
	// StrictGUIDs requires every GUID to parse as a UUID.
	StrictGUIDs bool
}

// Violations collects the field paths that failed validation for one entity.
type Violations struct {
	fields []string
}

// Add records a violated field path.
func (v *Violations) Add(field string) {
	v.fields = append(v.fields, field)
}

// Require records field when value is blank.
func (v *Violations) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field)
	}
}

// RequireSet records field when ok is false.
func (v *Violations) RequireSet(field string, ok bool) {
	if !ok {
		v.Add(field)
	}
}

// Date records field when value is blank or not an xs:dateTime.
func (v *Violations) Date(field, value string) {
	if !ValidDate(value) {
		v.Add(field)
	}
}

// OptionalDate records field when value is set but not an xs:dateTime.
func (v *Violations) OptionalDate(field, value string) {
	if strings.TrimSpace(value) != "" && !ValidDate(value) {
		v.Add(field)
	}
}

// ID records field when id is not a well-formed identifier under rules.
func (v *Violations) ID(field, id string, rules IDRules) {
	if !rules.Valid(id) {
		v.Add(field)
	}
}

// OptionalID checks id only when it is set.
func (v *Violations) OptionalID(field, id string, rules IDRules) {
	if id != "" {
		v.ID(field, id, rules)
	}
}

// Unique records field for every identifier that appears more than once.
func (v *Violations) Unique(field string, ids []string) {
	present := lo.Filter(ids, func(id string, _ int) bool { return id != "" })
	for _, dup := range lo.FindDuplicates(present) {
		v.Add(field + "[" + dup + "]")
	}
}

// Len returns the number of recorded violations.
func (v *Violations) Len() int {
	return len(v.fields)
}

// Err returns nil when nothing was recorded, otherwise a ValidationError.
func (v *Violations) Err(path, entity string) error {
	if len(v.fields) == 0 {
		return nil
	}
	return &bcferr.ValidationError{Path: path, Entity: entity, Fields: lo.Uniq(v.fields)}
}

// Valid reports whether id can name a topic folder or JSON unit.
func (r IDRules) Valid(id string) bool {
	if id == "" || strings.TrimSpace(id) != id {
		return false
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return false
	}
	if r.StrictGUIDs {
		_, err := uuid.Parse(id)
		return err == nil
	}
	return true
}

// ValidDate reports whether value parses as an xs:dateTime.
func ValidDate(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// HasGUID reports whether a topic GUID is present at all. Topics without one
// are skipped rather than rejected.
func HasGUID(id string) bool {
	return strings.TrimSpace(id) != ""
}
