package options

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("options: not found")
	ErrAlreadyExists   = errors.New("options: already exists")
	ErrAlreadyDeleted  = errors.New("options: already deleted")
	ErrInvalidArgument = errors.New("options: invalid argument")
	ErrStoreRequired   = errors.New("options: store required")
)

// NotFoundError lists every requested id that is absent, or soft deleted for
// operations that only see active records.
type NotFoundError struct {
	Kind string
	IDs  []uuid.UUID
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s %s not found", e.Kind, e.IDs[0])
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, joinIDs(e.IDs))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyExistsError reports a uniqueness violation on one key.
type AlreadyExistsError struct {
	Kind  string
	Field string
	Value string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Kind, e.Field, e.Value)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// AlreadyDeletedError lists ids that were already soft deleted.
type AlreadyDeletedError struct {
	Kind string
	IDs  []uuid.UUID
}

func (e *AlreadyDeletedError) Error() string {
	return fmt.Sprintf("%s already deleted: %s", e.Kind, joinIDs(e.IDs))
}

func (e *AlreadyDeletedError) Is(target error) bool { return target == ErrAlreadyDeleted }

// InvalidArgumentError carries field level issues. Index points at the
// offending member of a batch and is -1 for single record operations.
type InvalidArgumentError struct {
	Kind   string
	Index  int
	Reason string
	Issues validation.Errors
}

func (e *InvalidArgumentError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind)
	b.WriteString(": invalid argument")
	if e.Index >= 0 {
		fmt.Fprintf(&b, " at item %d", e.Index)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Issues) > 0 {
		b.WriteString(": ")
		b.WriteString(e.Issues.Error())
	}
	return b.String()
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// FieldIssues flattens the validation issues into field -> message.
func (e *InvalidArgumentError) FieldIssues() map[string]string {
	if len(e.Issues) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Issues))
	for field, err := range e.Issues {
		out[field] = err.Error()
	}
	return out
}

func invalid(kind, reason string) error {
	return &InvalidArgumentError{Kind: kind, Index: -1, Reason: reason}
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
