package options

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Operations is the kind agnostic view of a Service used by transports and
// commands that handle every kind the same way.
type Operations interface {
	Kind() string
	NewRecord() Record
	Create(ctx context.Context, record Record) (Record, error)
	CreateMany(ctx context.Context, records []Record) ([]Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]Record, error)
	List(ctx context.Context) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	UpdateMany(ctx context.Context, records []Record) ([]Record, error)
	HardUpdate(ctx context.Context, record Record) (Record, error)
	HardUpdateMany(ctx context.Context, records []Record) ([]Record, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (Record, error)
	SoftDeleteMany(ctx context.Context, ids []uuid.UUID) ([]Record, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
	HardDeleteMany(ctx context.Context, ids []uuid.UUID) (int, error)
	HardDeleteAll(ctx context.Context) (int, error)
}

// Operations returns the kind agnostic view of s.
func (s *Service[T]) Operations() Operations {
	return operations[T]{svc: s}
}

type operations[T Record] struct {
	svc *Service[T]
}

func (o operations[T]) Kind() string { return o.svc.Kind() }

func (o operations[T]) NewRecord() Record { return o.svc.NewRecord() }

func (o operations[T]) Create(ctx context.Context, record Record) (Record, error) {
	typed, err := o.typed(record, -1)
	if err != nil {
		return nil, err
	}
	return wrapOne(o.svc.Create(ctx, typed))
}

func (o operations[T]) CreateMany(ctx context.Context, records []Record) ([]Record, error) {
	typed, err := o.typedAll(records)
	if err != nil {
		return nil, err
	}
	return wrapMany(o.svc.CreateMany(ctx, typed))
}

func (o operations[T]) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	return wrapOne(o.svc.Get(ctx, id))
}

func (o operations[T]) GetMany(ctx context.Context, ids []uuid.UUID) ([]Record, error) {
	return wrapMany(o.svc.GetMany(ctx, ids))
}

func (o operations[T]) List(ctx context.Context) ([]Record, error) {
	return wrapMany(o.svc.List(ctx))
}

func (o operations[T]) ListAll(ctx context.Context) ([]Record, error) {
	return wrapMany(o.svc.ListAll(ctx))
}

func (o operations[T]) Update(ctx context.Context, record Record) (Record, error) {
	typed, err := o.typed(record, -1)
	if err != nil {
		return nil, err
	}
	return wrapOne(o.svc.Update(ctx, typed))
}

func (o operations[T]) UpdateMany(ctx context.Context, records []Record) ([]Record, error) {
	typed, err := o.typedAll(records)
	if err != nil {
		return nil, err
	}
	return wrapMany(o.svc.UpdateMany(ctx, typed))
}

func (o operations[T]) HardUpdate(ctx context.Context, record Record) (Record, error) {
	typed, err := o.typed(record, -1)
	if err != nil {
		return nil, err
	}
	return wrapOne(o.svc.HardUpdate(ctx, typed))
}

func (o operations[T]) HardUpdateMany(ctx context.Context, records []Record) ([]Record, error) {
	typed, err := o.typedAll(records)
	if err != nil {
		return nil, err
	}
	return wrapMany(o.svc.HardUpdateMany(ctx, typed))
}

func (o operations[T]) SoftDelete(ctx context.Context, id uuid.UUID) (Record, error) {
	return wrapOne(o.svc.SoftDelete(ctx, id))
}

func (o operations[T]) SoftDeleteMany(ctx context.Context, ids []uuid.UUID) ([]Record, error) {
	return wrapMany(o.svc.SoftDeleteMany(ctx, ids))
}

func (o operations[T]) HardDelete(ctx context.Context, id uuid.UUID) error {
	return o.svc.HardDelete(ctx, id)
}

func (o operations[T]) HardDeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	return o.svc.HardDeleteMany(ctx, ids)
}

func (o operations[T]) HardDeleteAll(ctx context.Context) (int, error) {
	return o.svc.HardDeleteAll(ctx)
}

func (o operations[T]) typed(record Record, index int) (T, error) {
	var zero T
	if record == nil {
		return zero, &InvalidArgumentError{Kind: o.svc.Kind(), Index: index, Reason: "record is required"}
	}
	typed, ok := record.(T)
	if !ok {
		return zero, &InvalidArgumentError{
			Kind:   o.svc.Kind(),
			Index:  index,
			Reason: fmt.Sprintf("unexpected record type %T", record),
		}
	}
	return typed, nil
}

func (o operations[T]) typedAll(records []Record) ([]T, error) {
	if records == nil {
		return nil, nil
	}
	out := make([]T, len(records))
	for i, record := range records {
		typed, err := o.typed(record, i)
		if err != nil {
			return nil, err
		}
		out[i] = typed
	}
	return out, nil
}

func wrapOne[T Record](record T, err error) (Record, error) {
	if err != nil {
		return nil, err
	}
	return record, nil
}

func wrapMany[T Record](records []T, err error) ([]Record, error) {
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(records))
	for i, record := range records {
		out[i] = record
	}
	return out, nil
}
