package options

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewRepository creates the go-repository-bun repository for a kind.
func NewRepository[T Record](db *bun.DB, schema Schema[T]) repository.Repository[T] {
	return repository.MustNewRepository(db, repository.ModelHandlers[T]{
		NewRecord: schema.New,
		GetID: func(record T) uuid.UUID {
			return record.OptionFields().ID
		},
		SetID: func(record T, id uuid.UUID) {
			record.OptionFields().ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(record T) string {
			return record.OptionFields().Name
		},
	})
}

// BunStore implements Store with bun. Point reads may be served by the read
// cache; list reads and transactions always hit the database.
type BunStore[T Record] struct {
	db     *bun.DB
	schema Schema[T]
	repo   repository.Repository[T]
	cached repository.Repository[T]
	tags   cache.TagRegistry
	tag    string
}

// NewBunStore creates a store without caching.
func NewBunStore[T Record](db *bun.DB, schema Schema[T]) *BunStore[T] {
	return NewBunStoreWithCache(db, schema, nil, nil)
}

// NewBunStoreWithCache creates a store whose GetByID reads are cached. Cached
// entries carry a per-kind tag that is invalidated after every committed
// write, so the cache service must implement cache.TagRegistry; otherwise
// the store runs uncached.
func NewBunStoreWithCache[T Record](db *bun.DB, schema Schema[T], cacheService cache.CacheService, serializer cache.KeySerializer) *BunStore[T] {
	store := &BunStore[T]{db: db, schema: schema, repo: NewRepository(db, schema)}
	if cacheService == nil || serializer == nil {
		return store
	}
	tags, ok := cacheService.(cache.TagRegistry)
	if !ok {
		return store
	}
	store.cached = repositorycache.New(store.repo, cacheService, serializer)
	store.tags = tags
	store.tag = cacheTag(schema.Kind)
	return store
}

var _ Store[*CountryOption] = (*BunStore[*CountryOption])(nil)

// Cached reports whether point reads go through the read cache.
func (s *BunStore[T]) Cached() bool {
	return s.cached != nil
}

// CreateTable creates the kind's table when it does not exist.
func (s *BunStore[T]) CreateTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model(s.schema.New()).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("%s: create table: %w", s.schema.Kind, err)
	}
	return nil
}

func (s *BunStore[T]) Create(ctx context.Context, record T) (T, error) {
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s repository error: %w", s.schema.Kind, err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *BunStore[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var (
		record T
		err    error
	)
	if s.cached != nil {
		record, err = s.cached.GetByID(repositorycache.WithCacheTags(ctx, s.tag), id.String())
		if err == nil {
			record = s.schema.clone(record)
		}
	} else {
		record, err = s.repo.GetByID(ctx, id.String())
	}
	if err != nil {
		var zero T
		return zero, s.mapError(err, id)
	}
	return record, nil
}

func (s *BunStore[T]) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return []T{}, nil
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id IN (?)", bun.In(ids))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", s.schema.Kind, err)
	}
	return records, nil
}

func (s *BunStore[T]) List(ctx context.Context, includeDeleted bool) ([]T, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if !includeDeleted {
				q = q.Where("?TableAlias.deleted_at IS NULL")
			}
			return q.OrderExpr("?TableAlias.name ASC, ?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", s.schema.Kind, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (s *BunStore[T]) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx[T]) error) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &bunTx[T]{tx: tx, schema: s.schema})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *BunStore[T]) invalidate(ctx context.Context) {
	if s.tags == nil {
		return
	}
	_ = s.tags.InvalidateTags(ctx, []string{s.tag})
}

func (s *BunStore[T]) mapError(err error, id uuid.UUID) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Kind: s.schema.Kind, IDs: []uuid.UUID{id}}
	}
	return fmt.Errorf("%s repository error: %w", s.schema.Kind, err)
}

type bunTx[T Record] struct {
	tx     bun.Tx
	schema Schema[T]
}

func (t *bunTx[T]) model() T {
	var model T
	return model
}

func (t *bunTx[T]) Get(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	ids = dedupeIDs(ids)
	records := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}
	if err := t.tx.NewSelect().
		Model(&records).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("%s: select by ids: %w", t.schema.Kind, err)
	}
	return records, nil
}

func (t *bunTx[T]) FindByUnique(ctx context.Context, column, value string, activeOnly bool) ([]T, error) {
	var records []T
	q := t.tx.NewSelect().
		Model(&records).
		Where("lower(trim(?TableAlias.?)) = ?", bun.Ident(column), foldKey(value))
	if activeOnly {
		q = q.Where("?TableAlias.deleted_at IS NULL")
	}
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: select by %s: %w", t.schema.Kind, column, err)
	}
	return records, nil
}

func (t *bunTx[T]) Insert(ctx context.Context, records ...T) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := t.tx.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("%s: insert: %w", t.schema.Kind, err)
	}
	return nil
}

func (t *bunTx[T]) Save(ctx context.Context, columns []string, records ...T) error {
	return t.save(ctx, columns, false, records)
}

func (t *bunTx[T]) SaveActive(ctx context.Context, columns []string, records ...T) error {
	return t.save(ctx, columns, true, records)
}

func (t *bunTx[T]) save(ctx context.Context, columns []string, activeOnly bool, records []T) error {
	for _, record := range records {
		q := t.tx.NewUpdate().
			Model(record).
			Column(columns...).
			WherePK()
		if activeOnly {
			q = q.Where("deleted_at IS NULL")
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return fmt.Errorf("%s: update: %w", t.schema.Kind, err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			continue
		}
		id := record.OptionFields().ID
		if activeOnly {
			exists, err := t.tx.NewSelect().
				Model(t.model()).
				Where("?TableAlias.id = ?", id).
				Exists(ctx)
			if err != nil {
				return fmt.Errorf("%s: select by id: %w", t.schema.Kind, err)
			}
			if exists {
				return &AlreadyDeletedError{Kind: t.schema.Kind, IDs: []uuid.UUID{id}}
			}
		}
		return &NotFoundError{Kind: t.schema.Kind, IDs: []uuid.UUID{id}}
	}
	return nil
}

func (t *bunTx[T]) Remove(ctx context.Context, ids ...uuid.UUID) (int, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := t.tx.NewDelete().
		Model(t.model()).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: delete: %w", t.schema.Kind, err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (t *bunTx[T]) RemoveAll(ctx context.Context) (int, error) {
	res, err := t.tx.NewDelete().
		Model(t.model()).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: delete all: %w", t.schema.Kind, err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func cacheTag(kind string) string {
	return "lookup" + cache.KeySeparator + kind
}
