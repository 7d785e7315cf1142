package kinds

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-lookup/internal/identity"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

// Binding ties a kind's descriptor to its service.
type Binding struct {
	Descriptor Descriptor
	Operations options.Operations

	migrate func(ctx context.Context) error
	seed    func(ctx context.Context) (int, error)
}

// Registry holds the enabled kinds.
type Registry struct {
	bindings  []*Binding
	byKey     map[string]*Binding
	bySlug    map[string]*Binding
	countries *options.Service[*options.CountryOption]
}

// Option configures Build.
type Option func(*builder)

// WithDB stores records in db. Without it every kind uses a MemoryStore.
func WithDB(db *bun.DB) Option {
	return func(b *builder) {
		b.db = db
	}
}

// WithCache wraps bun stores in the read cache.
func WithCache(cacheService cache.CacheService, serializer cache.KeySerializer) Option {
	return func(b *builder) {
		b.cacheService = cacheService
		b.serializer = serializer
	}
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(b *builder) {
		b.loggers = provider
	}
}

// WithServiceOptions are applied to every kind's service.
func WithServiceOptions(opts ...options.ServiceOption) Option {
	return func(b *builder) {
		b.serviceOpts = append(b.serviceOpts, opts...)
	}
}

type builder struct {
	cfg          Config
	db           *bun.DB
	cacheService cache.CacheService
	serializer   cache.KeySerializer
	loggers      interfaces.LoggerProvider
	serviceOpts  []options.ServiceOption
	registry     *Registry
}

// Build creates a service per enabled built-in kind.
func Build(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &builder{
		cfg: cfg,
		registry: &Registry{
			byKey:  make(map[string]*Binding),
			bySlug: make(map[string]*Binding),
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, def := range builtins {
		if cfg.override(def.key).Disabled {
			continue
		}
		if err := def.register(b, def); err != nil {
			return nil, err
		}
	}
	return b.registry, nil
}

func register[T options.Record](b *builder, def definition, schema options.Schema[T], applySeed func(T, map[string]string)) (*options.Service[T], error) {
	override := b.cfg.override(def.key)
	if scope, ok := options.ParseScope(override.UniqueScope); ok {
		schema.Scope = scope
	}

	var (
		store   options.Store[T]
		migrate = func(context.Context) error { return nil }
	)
	if b.db != nil {
		bunStore := options.NewBunStoreWithCache(b.db, schema, b.cacheService, b.serializer)
		store = bunStore
		migrate = bunStore.CreateTable
	} else {
		store = options.NewMemoryStore(schema)
	}

	logger := logging.OptionsLogger(b.loggers, def.key)
	opts := append([]options.ServiceOption{options.WithLogger(logger)}, b.serviceOpts...)
	svc := options.NewService(schema, store, opts...)

	slugValue, err := routeSlug(def.key, override.Slug)
	if err != nil {
		return nil, err
	}
	if existing, ok := b.registry.bySlug[slugValue]; ok {
		return nil, fmt.Errorf("kinds: %s: slug %q already used by %s", def.key, slugValue, existing.Descriptor.Key)
	}

	unique := []string{"name"}
	for _, key := range schema.Unique {
		unique = append(unique, key.Field)
	}
	binding := &Binding{
		Descriptor: Descriptor{
			Key:    def.key,
			Label:  firstNonEmpty(override.Label, def.label),
			Slug:   slugValue,
			Table:  tableName(schema.New()),
			Scope:  schema.Scope,
			Unique: unique,
		},
		Operations: svc.Operations(),
		migrate:    migrate,
		seed: func(ctx context.Context) (int, error) {
			return seedKind(ctx, svc, store, schema, override.Seeds, applySeed, logger)
		},
	}

	b.registry.bindings = append(b.registry.bindings, binding)
	b.registry.byKey[def.key] = binding
	b.registry.bySlug[slugValue] = binding
	return svc, nil
}

func seedKind[T options.Record](ctx context.Context, svc *options.Service[T], store options.Store[T], schema options.Schema[T], seeds []Seed, apply func(T, map[string]string), logger interfaces.Logger) (int, error) {
	created := 0
	for _, seed := range seeds {
		id := identity.OptionUUID(schema.Kind, seed.Name)
		if _, err := store.GetByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, options.ErrNotFound) {
			return created, err
		}

		record := schema.New()
		fields := record.OptionFields()
		fields.ID = id
		fields.Name = seed.Name
		if desc := strings.TrimSpace(seed.Description); desc != "" {
			fields.Description = &desc
		}
		if apply != nil {
			apply(record, seed.Attributes)
		}
		if _, err := svc.Create(ctx, record); err != nil {
			if errors.Is(err, options.ErrAlreadyExists) {
				logger.Debug("kinds.seed.skip", "kind", schema.Kind, "name", seed.Name, "reason", err.Error())
				continue
			}
			return created, fmt.Errorf("kinds: seed %s %q: %w", schema.Kind, seed.Name, err)
		}
		created++
	}
	if created > 0 {
		logger.Info("kinds.seed.complete", "kind", schema.Kind, "created", created)
	}
	return created, nil
}

// Bindings returns the enabled kinds in registration order.
func (r *Registry) Bindings() []*Binding {
	return append([]*Binding(nil), r.bindings...)
}

func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.bindings))
	for i, binding := range r.bindings {
		out[i] = binding.Descriptor
	}
	return out
}

func (r *Registry) Lookup(key string) (*Binding, bool) {
	binding, ok := r.byKey[strings.TrimSpace(key)]
	return binding, ok
}

func (r *Registry) BySlug(slugValue string) (*Binding, bool) {
	binding, ok := r.bySlug[slugValue]
	return binding, ok
}

// Countries returns the typed country service, or nil when the kind is
// disabled.
func (r *Registry) Countries() *options.Service[*options.CountryOption] {
	return r.countries
}

// Migrate creates missing tables for bun backed kinds.
func (r *Registry) Migrate(ctx context.Context) error {
	for _, binding := range r.bindings {
		if err := binding.migrate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts configured seeds that are not stored yet and returns how many
// were created per kind.
func (r *Registry) Seed(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(r.bindings))
	for _, binding := range r.bindings {
		n, err := binding.seed(ctx)
		if err != nil {
			return out, err
		}
		out[binding.Descriptor.Key] = n
	}
	return out, nil
}

// tableName reads the table from the model's bun.BaseModel tag.
func tableName(model any) string {
	typ := reflect.TypeOf(model).Elem()
	field, ok := typ.FieldByName("BaseModel")
	if !ok {
		return ""
	}
	tag := field.Tag.Get("bun")
	for _, part := range strings.Split(tag, ",") {
		if name, found := strings.CutPrefix(part, "table:"); found {
			return name
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
