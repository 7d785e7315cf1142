package options

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

// IDGenerator produces ids for records created without one.
type IDGenerator func() uuid.UUID

type serviceConfig struct {
	now    func() time.Time
	newID  IDGenerator
	logger interfaces.Logger
	events *Broadcaster
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(c *serviceConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides uuid.New.
func WithIDGenerator(gen IDGenerator) ServiceOption {
	return func(c *serviceConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(c *serviceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBroadcaster publishes a ChangeEvent after every successful mutation.
func WithBroadcaster(b *Broadcaster) ServiceOption {
	return func(c *serviceConfig) {
		c.events = b
	}
}

// Service enforces the lifecycle of one option kind: uniqueness on create
// and update, existence on reads and writes, and the soft/hard delete state
// machine. Every mutation runs in a single store transaction.
type Service[T Record] struct {
	schema Schema[T]
	store  Store[T]
	now    func() time.Time
	newID  IDGenerator
	logger interfaces.Logger
	events *Broadcaster
}

// NewService panics when store or schema.New is missing.
func NewService[T Record](schema Schema[T], store Store[T], opts ...ServiceOption) *Service[T] {
	if store == nil {
		panic(ErrStoreRequired)
	}
	if schema.New == nil {
		panic(fmt.Errorf("options: schema %q has no constructor", schema.Kind))
	}
	if schema.Scope == "" {
		schema.Scope = ScopeAll
	}

	cfg := serviceConfig{
		now:    time.Now,
		newID:  uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service[T]{
		schema: schema,
		store:  store,
		now:    cfg.now,
		newID:  cfg.newID,
		logger: cfg.logger,
		events: cfg.events,
	}
}

func (s *Service[T]) Kind() string { return s.schema.Kind }

func (s *Service[T]) Scope() Scope { return s.schema.Scope }

// NewRecord returns an empty record of the service's kind.
func (s *Service[T]) NewRecord() T { return s.schema.New() }

func (s *Service[T]) Create(ctx context.Context, record T) (T, error) {
	created, err := s.create(ctx, []T{record}, false)
	if err != nil {
		var zero T
		return zero, err
	}
	return created[0], nil
}

// CreateMany inserts every record or none of them.
func (s *Service[T]) CreateMany(ctx context.Context, records []T) ([]T, error) {
	return s.create(ctx, records, true)
}

func (s *Service[T]) create(ctx context.Context, records []T, batch bool) ([]T, error) {
	if len(records) == 0 {
		return nil, invalid(s.schema.Kind, "at least one record is required")
	}
	now := s.timestamp()
	prepared := make([]T, len(records))
	for i, record := range records {
		rec, err := s.prepare(record, indexOf(i, batch))
		if err != nil {
			return nil, err
		}
		fields := rec.OptionFields()
		if fields.ID == uuid.Nil {
			fields.ID = s.newID()
		}
		fields.CreatedAt = now
		fields.UpdatedAt = now
		fields.DeletedAt = nil
		prepared[i] = rec
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx[T]) error {
		ids := make([]uuid.UUID, len(prepared))
		for i, rec := range prepared {
			ids[i] = rec.OptionFields().ID
		}
		if len(dedupeIDs(ids)) != len(ids) {
			return invalid(s.schema.Kind, "duplicate id in batch")
		}
		existing, err := tx.Get(ctx, ids)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			id := existing[0].OptionFields().ID
			return &AlreadyExistsError{Kind: s.schema.Kind, Field: "id", Value: id.String()}
		}
		if err := s.checkUnique(ctx, tx, prepared); err != nil {
			return err
		}
		return tx.Insert(ctx, prepared...)
	})
	if err != nil {
		s.logger.WithContext(ctx).Debug("options.create.rejected", "kind", s.schema.Kind, "count", len(records), "error", err)
		return nil, err
	}

	s.publish(ctx, interfaces.ChangeCreated, prepared)
	s.logger.WithContext(ctx).Info("options.create.success", "kind", s.schema.Kind, "count", len(prepared))
	return s.cloneAll(prepared), nil
}

// Get returns an active record.
func (s *Service[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if id == uuid.Nil {
		return zero, invalid(s.schema.Kind, "id is required")
	}
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if record.OptionFields().DeletedAt != nil {
		return zero, &NotFoundError{Kind: s.schema.Kind, IDs: []uuid.UUID{id}}
	}
	return record, nil
}

// GetMany returns the active records among ids in request order. Missing
// and soft deleted ids are skipped.
func (s *Service[T]) GetMany(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	if ids == nil {
		return nil, invalid(s.schema.Kind, "ids are required")
	}
	if err := s.checkIDs(ids); err != nil {
		return nil, err
	}
	records, err := s.store.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := indexByID(records)
	out := make([]T, 0, len(records))
	for _, id := range dedupeIDs(ids) {
		record, ok := found[id]
		if !ok || record.OptionFields().DeletedAt != nil {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// List returns active records. An empty kind yields an empty slice.
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	return s.store.List(ctx, false)
}

// ListAll returns every record regardless of deletion state.
func (s *Service[T]) ListAll(ctx context.Context) ([]T, error) {
	return s.store.List(ctx, true)
}

func (s *Service[T]) Update(ctx context.Context, record T) (T, error) {
	updated, err := s.update(ctx, []T{record}, false, false)
	if err != nil {
		var zero T
		return zero, err
	}
	return updated[0], nil
}

func (s *Service[T]) UpdateMany(ctx context.Context, records []T) ([]T, error) {
	return s.update(ctx, records, true, false)
}

// HardUpdate overwrites a record in any state. Deletion state is left as is
// and uniqueness is not checked.
func (s *Service[T]) HardUpdate(ctx context.Context, record T) (T, error) {
	updated, err := s.update(ctx, []T{record}, false, true)
	if err != nil {
		var zero T
		return zero, err
	}
	return updated[0], nil
}

func (s *Service[T]) HardUpdateMany(ctx context.Context, records []T) ([]T, error) {
	return s.update(ctx, records, true, true)
}

func (s *Service[T]) update(ctx context.Context, records []T, batch, hard bool) ([]T, error) {
	if len(records) == 0 {
		return nil, invalid(s.schema.Kind, "at least one record is required")
	}
	inputs := make([]T, len(records))
	ids := make([]uuid.UUID, len(records))
	for i, record := range records {
		rec, err := s.prepare(record, indexOf(i, batch))
		if err != nil {
			return nil, err
		}
		if rec.OptionFields().ID == uuid.Nil {
			return nil, &InvalidArgumentError{Kind: s.schema.Kind, Index: indexOf(i, batch), Reason: "id is required"}
		}
		inputs[i] = rec
		ids[i] = rec.OptionFields().ID
	}
	if len(dedupeIDs(ids)) != len(ids) {
		return nil, invalid(s.schema.Kind, "duplicate id in batch")
	}

	now := s.timestamp()
	var updated []T
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx[T]) error {
		current, err := tx.Get(ctx, ids)
		if err != nil {
			return err
		}
		found := indexByID(current)
		if missing := missingIDs(ids, found); len(missing) > 0 {
			return &NotFoundError{Kind: s.schema.Kind, IDs: missing}
		}
		if !hard {
			var deleted []uuid.UUID
			for _, id := range ids {
				if found[id].OptionFields().DeletedAt != nil {
					deleted = append(deleted, id)
				}
			}
			if len(deleted) > 0 {
				return &NotFoundError{Kind: s.schema.Kind, IDs: deleted}
			}
			if err := s.checkUnique(ctx, tx, inputs); err != nil {
				return err
			}
		}

		updated = make([]T, len(inputs))
		for i, input := range inputs {
			merged := s.schema.clone(found[ids[i]])
			fields, in := merged.OptionFields(), input.OptionFields()
			fields.Name = in.Name
			fields.Description = in.Description
			fields.UpdatedAt = now
			if s.schema.Assign != nil {
				s.schema.Assign(merged, input)
			}
			updated[i] = merged
		}
		if hard {
			return tx.Save(ctx, s.schema.updateColumns(), updated...)
		}
		if err := tx.SaveActive(ctx, s.schema.updateColumns(), updated...); err != nil {
			var deleted *AlreadyDeletedError
			if errors.As(err, &deleted) {
				return &NotFoundError{Kind: s.schema.Kind, IDs: deleted.IDs}
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.WithContext(ctx).Debug("options.update.rejected", "kind", s.schema.Kind, "hard", hard, "error", err)
		return nil, err
	}

	s.publish(ctx, interfaces.ChangeUpdated, updated)
	s.logger.WithContext(ctx).Info("options.update.success", "kind", s.schema.Kind, "hard", hard, "count", len(updated))
	return s.cloneAll(updated), nil
}

func (s *Service[T]) SoftDelete(ctx context.Context, id uuid.UUID) (T, error) {
	deleted, err := s.SoftDeleteMany(ctx, []uuid.UUID{id})
	if err != nil {
		var zero T
		return zero, err
	}
	return deleted[0], nil
}

// SoftDeleteMany marks every id deleted, or none. All missing ids are
// reported first; only then are already deleted ids reported.
func (s *Service[T]) SoftDeleteMany(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	if len(ids) == 0 {
		return nil, invalid(s.schema.Kind, "ids are required")
	}
	if err := s.checkIDs(ids); err != nil {
		return nil, err
	}
	ids = dedupeIDs(ids)
	now := s.timestamp()

	var deleted []T
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx[T]) error {
		current, err := tx.Get(ctx, ids)
		if err != nil {
			return err
		}
		found := indexByID(current)
		if missing := missingIDs(ids, found); len(missing) > 0 {
			return &NotFoundError{Kind: s.schema.Kind, IDs: missing}
		}
		var already []uuid.UUID
		for _, id := range ids {
			if found[id].OptionFields().DeletedAt != nil {
				already = append(already, id)
			}
		}
		if len(already) > 0 {
			return &AlreadyDeletedError{Kind: s.schema.Kind, IDs: already}
		}

		deleted = make([]T, len(ids))
		for i, id := range ids {
			record := found[id]
			record.OptionFields().DeletedAt = ptrTime(now)
			deleted[i] = record
		}
		return tx.SaveActive(ctx, []string{"deleted_at"}, deleted...)
	})
	if err != nil {
		s.logger.WithContext(ctx).Debug("options.soft_delete.rejected", "kind", s.schema.Kind, "error", err)
		return nil, err
	}

	s.publish(ctx, interfaces.ChangeSoftDeleted, deleted)
	s.logger.WithContext(ctx).Info("options.soft_delete.success", "kind", s.schema.Kind, "count", len(deleted))
	return s.cloneAll(deleted), nil
}

func (s *Service[T]) HardDelete(ctx context.Context, id uuid.UUID) error {
	_, err := s.HardDeleteMany(ctx, []uuid.UUID{id})
	return err
}

// HardDeleteMany removes every id, or none when any is missing.
func (s *Service[T]) HardDeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, invalid(s.schema.Kind, "ids are required")
	}
	if err := s.checkIDs(ids); err != nil {
		return 0, err
	}
	ids = dedupeIDs(ids)

	var removed []T
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx[T]) error {
		current, err := tx.Get(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, indexByID(current)); len(missing) > 0 {
			return &NotFoundError{Kind: s.schema.Kind, IDs: missing}
		}
		removed = current
		_, err = tx.Remove(ctx, ids...)
		return err
	})
	if err != nil {
		s.logger.WithContext(ctx).Debug("options.hard_delete.rejected", "kind", s.schema.Kind, "error", err)
		return 0, err
	}

	s.publish(ctx, interfaces.ChangeHardDeleted, removed)
	s.logger.WithContext(ctx).Info("options.hard_delete.success", "kind", s.schema.Kind, "count", len(removed))
	return len(removed), nil
}

// HardDeleteAll removes every record of the kind and returns how many went.
func (s *Service[T]) HardDeleteAll(ctx context.Context) (int, error) {
	var removed int
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx[T]) error {
		n, err := tx.RemoveAll(ctx)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.broadcast(ctx, interfaces.ChangeHardDeleted, nil)
	}
	s.logger.WithContext(ctx).Info("options.hard_delete_all.success", "kind", s.schema.Kind, "count", removed)
	return removed, nil
}

// prepare copies and normalizes an input record, then validates it.
func (s *Service[T]) prepare(record T, index int) (T, error) {
	if isNil(record) {
		var zero T
		return zero, &InvalidArgumentError{Kind: s.schema.Kind, Index: index, Reason: "record is required"}
	}
	rec := s.schema.clone(record)
	s.schema.normalize(rec)
	if issues := s.schema.validate(rec); issues != nil {
		var zero T
		return zero, &InvalidArgumentError{Kind: s.schema.Kind, Index: index, Issues: issues}
	}
	return rec, nil
}

// checkUnique rejects records whose unique keys collide with another member
// of the batch, or with a stored record outside the batch. Stored values of
// batch members are about to be replaced, so they never collide.
func (s *Service[T]) checkUnique(ctx context.Context, tx Tx[T], records []T) error {
	activeOnly := s.schema.Scope == ScopeActive
	members := make(map[uuid.UUID]struct{}, len(records))
	for _, record := range records {
		members[record.OptionFields().ID] = struct{}{}
	}
	for _, key := range s.schema.keys() {
		seen := make(map[string]struct{}, len(records))
		for _, record := range records {
			value := key.Value(record)
			folded := foldKey(value)
			if folded == "" {
				continue
			}
			if _, dup := seen[folded]; dup {
				return &AlreadyExistsError{Kind: s.schema.Kind, Field: key.Field, Value: value}
			}
			seen[folded] = struct{}{}

			matches, err := tx.FindByUnique(ctx, key.Column, value, activeOnly)
			if err != nil {
				return err
			}
			for _, match := range matches {
				if _, member := members[match.OptionFields().ID]; !member {
					return &AlreadyExistsError{Kind: s.schema.Kind, Field: key.Field, Value: value}
				}
			}
		}
	}
	return nil
}

func (s *Service[T]) checkIDs(ids []uuid.UUID) error {
	for i, id := range ids {
		if id == uuid.Nil {
			return &InvalidArgumentError{Kind: s.schema.Kind, Index: i, Reason: "id is required"}
		}
	}
	return nil
}

func (s *Service[T]) publish(ctx context.Context, change interfaces.ChangeType, records []T) {
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.OptionFields().ID.String()
	}
	s.broadcast(ctx, change, ids)
}

func (s *Service[T]) broadcast(_ context.Context, change interfaces.ChangeType, ids []string) {
	s.events.Broadcast(ChangeEvent{Kind: s.schema.Kind, Type: change, IDs: ids})
}

func (s *Service[T]) cloneAll(records []T) []T {
	out := make([]T, len(records))
	for i, record := range records {
		out[i] = s.schema.clone(record)
	}
	return out
}

func (s *Service[T]) timestamp() time.Time {
	return s.now().UTC()
}

func indexOf(i int, batch bool) int {
	if batch {
		return i
	}
	return -1
}

func isNil[T Record](record T) bool {
	v := reflect.ValueOf(record)
	return !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil())
}
