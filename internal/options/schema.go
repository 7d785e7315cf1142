package options

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Record is implemented by every option model through the embedded Fields.
type Record interface {
	OptionFields() *Fields
}

// Scope selects which records take part in uniqueness checks.
type Scope string

const (
	// ScopeAll checks active and soft deleted records.
	ScopeAll Scope = "all"
	// ScopeActive ignores soft deleted records.
	ScopeActive Scope = "active"
)

// ParseScope returns ScopeAll for unknown values.
func ParseScope(value string) (Scope, bool) {
	switch Scope(strings.ToLower(strings.TrimSpace(value))) {
	case ScopeAll:
		return ScopeAll, true
	case ScopeActive:
		return ScopeActive, true
	}
	return ScopeAll, false
}

// UniqueKey names a column whose trimmed, case folded value must be unique
// within a kind.
type UniqueKey[T Record] struct {
	Field  string
	Column string
	Value  func(T) string
}

// Schema describes one option kind.
type Schema[T Record] struct {
	Kind string
	New  func() T

	// Unique lists keys checked in addition to name.
	Unique []UniqueKey[T]
	Scope  Scope

	// Normalize trims extension fields before validation.
	Normalize func(T)
	// Validate returns field issues for extension fields.
	Validate func(T) validation.Errors
	// Assign copies extension fields from src into dst.
	Assign func(dst, src T)
	// Columns lists extension columns written by updates.
	Columns []string
}

const (
	maxNameLength        = 255
	maxDescriptionLength = 2000
)

var baseColumns = []string{"name", "description", "updated_at"}

// BasicSchema returns the schema of a kind that only has the shared columns.
func BasicSchema[T Record](kind string, newRecord func() T) Schema[T] {
	return Schema[T]{Kind: kind, New: newRecord, Scope: ScopeAll}
}

func (s Schema[T]) keys() []UniqueKey[T] {
	keys := make([]UniqueKey[T], 0, len(s.Unique)+1)
	keys = append(keys, UniqueKey[T]{
		Field:  "name",
		Column: "name",
		Value:  func(r T) string { return r.OptionFields().Name },
	})
	return append(keys, s.Unique...)
}

func (s Schema[T]) updateColumns() []string {
	cols := append([]string{}, baseColumns...)
	return append(cols, s.Columns...)
}

func (s Schema[T]) clone(src T) T {
	dst := s.New()
	*dst.OptionFields() = cloneFields(*src.OptionFields())
	if s.Assign != nil {
		s.Assign(dst, src)
	}
	return dst
}

func (s Schema[T]) normalize(r T) {
	f := r.OptionFields()
	f.Name = strings.TrimSpace(f.Name)
	if f.Description != nil {
		trimmed := strings.TrimSpace(*f.Description)
		f.Description = &trimmed
	}
	if s.Normalize != nil {
		s.Normalize(r)
	}
}

func (s Schema[T]) validate(r T) validation.Errors {
	f := r.OptionFields()
	issues := validation.Errors{
		"name": validation.Validate(f.Name, validation.Required, validation.RuneLength(1, maxNameLength)),
	}
	if f.Description != nil {
		issues["description"] = validation.Validate(*f.Description, validation.RuneLength(0, maxDescriptionLength))
	}
	if s.Validate != nil {
		for field, err := range s.Validate(r) {
			issues[field] = err
		}
	}
	for field, err := range issues {
		if err == nil {
			delete(issues, field)
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return issues
}
