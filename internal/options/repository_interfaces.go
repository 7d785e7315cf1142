package options

import (
	"context"

	"github.com/google/uuid"
)

// Store persists records of a single kind.
type Store[T Record] interface {
	// Create inserts record as is. Used by seeding; lifecycle writes go
	// through InTx.
	Create(ctx context.Context, record T) (T, error)
	// GetByID returns the record in any state, or *NotFoundError.
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	// ListByIDs returns the records among ids that exist, in any state.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error)
	List(ctx context.Context, includeDeleted bool) ([]T, error)
	// InTx runs fn in a transaction. Any error from fn rolls back every
	// mutation fn made.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx[T]) error) error
}

// Tx is a Store bound to a transaction.
type Tx[T Record] interface {
	Get(ctx context.Context, ids []uuid.UUID) ([]T, error)
	// FindByUnique matches column case-insensitively after trimming.
	FindByUnique(ctx context.Context, column, value string, activeOnly bool) ([]T, error)
	Insert(ctx context.Context, records ...T) error
	// Save writes columns of existing records in any state.
	Save(ctx context.Context, columns []string, records ...T) error
	// SaveActive writes columns of records that are still active. A record
	// deleted since it was read yields *AlreadyDeletedError.
	SaveActive(ctx context.Context, columns []string, records ...T) error
	Remove(ctx context.Context, ids ...uuid.UUID) (int, error)
	RemoveAll(ctx context.Context) (int, error)
}
