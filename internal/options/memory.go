package options

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps records in a map. Transactions run against a copy that
// replaces the live map only when the callback succeeds.
type MemoryStore[T Record] struct {
	schema Schema[T]
	mu     sync.RWMutex
	byID   map[uuid.UUID]T
}

func NewMemoryStore[T Record](schema Schema[T]) *MemoryStore[T] {
	return &MemoryStore[T]{schema: schema, byID: make(map[uuid.UUID]T)}
}

var _ Store[*CountryOption] = (*MemoryStore[*CountryOption])(nil)

func (m *MemoryStore[T]) Create(_ context.Context, record T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.schema.clone(record)
	m.byID[stored.OptionFields().ID] = stored
	return m.schema.clone(stored), nil
}

func (m *MemoryStore[T]) GetByID(_ context.Context, id uuid.UUID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.byID[id]
	if !ok {
		var zero T
		return zero, &NotFoundError{Kind: m.schema.Kind, IDs: []uuid.UUID{id}}
	}
	return m.schema.clone(record), nil
}

func (m *MemoryStore[T]) ListByIDs(_ context.Context, ids []uuid.UUID) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&memoryTx[T]{schema: m.schema, byID: m.byID}).lookup(ids), nil
}

func (m *MemoryStore[T]) List(_ context.Context, includeDeleted bool) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.byID))
	for _, record := range m.byID {
		if !includeDeleted && record.OptionFields().DeletedAt != nil {
			continue
		}
		out = append(out, m.schema.clone(record))
	}
	sortRecords(out)
	return out, nil
}

func (m *MemoryStore[T]) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx[T]) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx[T]{schema: m.schema, byID: maps.Clone(m.byID)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.byID = tx.byID
	return nil
}

type memoryTx[T Record] struct {
	schema Schema[T]
	byID   map[uuid.UUID]T
}

func (tx *memoryTx[T]) lookup(ids []uuid.UUID) []T {
	out := make([]T, 0, len(ids))
	for _, id := range dedupeIDs(ids) {
		if record, ok := tx.byID[id]; ok {
			out = append(out, tx.schema.clone(record))
		}
	}
	return out
}

func (tx *memoryTx[T]) Get(_ context.Context, ids []uuid.UUID) ([]T, error) {
	return tx.lookup(ids), nil
}

func (tx *memoryTx[T]) FindByUnique(_ context.Context, column, value string, activeOnly bool) ([]T, error) {
	idx := slices.IndexFunc(tx.schema.keys(), func(k UniqueKey[T]) bool { return k.Column == column })
	if idx < 0 {
		return nil, invalid(tx.schema.Kind, "unknown unique column "+column)
	}
	key := tx.schema.keys()[idx]
	want := foldKey(value)

	var out []T
	for _, record := range tx.byID {
		if activeOnly && record.OptionFields().DeletedAt != nil {
			continue
		}
		if foldKey(key.Value(record)) == want {
			out = append(out, tx.schema.clone(record))
		}
	}
	return out, nil
}

func (tx *memoryTx[T]) Insert(_ context.Context, records ...T) error {
	for _, record := range records {
		stored := tx.schema.clone(record)
		tx.byID[stored.OptionFields().ID] = stored
	}
	return nil
}

// Save replaces whole records; the memory store has no partial columns.
func (tx *memoryTx[T]) Save(_ context.Context, _ []string, records ...T) error {
	for _, record := range records {
		id := record.OptionFields().ID
		if _, ok := tx.byID[id]; !ok {
			return &NotFoundError{Kind: tx.schema.Kind, IDs: []uuid.UUID{id}}
		}
		tx.byID[id] = tx.schema.clone(record)
	}
	return nil
}

func (tx *memoryTx[T]) SaveActive(ctx context.Context, columns []string, records ...T) error {
	for _, record := range records {
		id := record.OptionFields().ID
		if current, ok := tx.byID[id]; ok && current.OptionFields().DeletedAt != nil {
			return &AlreadyDeletedError{Kind: tx.schema.Kind, IDs: []uuid.UUID{id}}
		}
	}
	return tx.Save(ctx, columns, records...)
}

func (tx *memoryTx[T]) Remove(_ context.Context, ids ...uuid.UUID) (int, error) {
	removed := 0
	for _, id := range dedupeIDs(ids) {
		if _, ok := tx.byID[id]; ok {
			delete(tx.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (tx *memoryTx[T]) RemoveAll(context.Context) (int, error) {
	n := len(tx.byID)
	clear(tx.byID)
	return n, nil
}
