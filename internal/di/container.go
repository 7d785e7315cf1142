package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	exportcmd "github.com/goliatone/go-lookup/internal/commands/export"
	optionscmd "github.com/goliatone/go-lookup/internal/commands/options"
	"github.com/goliatone/go-lookup/internal/export"
	lookuphttp "github.com/goliatone/go-lookup/internal/http"
	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/internal/logging/console"
	"github.com/goliatone/go-lookup/internal/logging/gologger"
	"github.com/goliatone/go-lookup/internal/metrics"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/goliatone/go-lookup/internal/runtimeconfig"
	"github.com/goliatone/go-lookup/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// CommandRegistry receives every command handler the container builds.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	broadcaster *options.Broadcaster
	serviceOpts []options.ServiceOption
	registry    *kinds.Registry

	sink     export.Sink
	exporter *export.Worker

	api *lookuphttp.OptionsAPI

	metricsRegistry *prometheus.Registry
	metrics         *metrics.Metrics
	stopWatch       context.CancelFunc

	commandRegistry CommandRegistry
	exportCommands  *exportcmd.HandlerSet
	optionCommands  *optionscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithSink overrides the export sink selected by Config.Export.Sink.
func WithSink(sink export.Sink) Option {
	return func(c *Container) {
		c.sink = sink
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithMetricsRegistry registers the collectors with reg instead of a
// private registry. Only used when Config.Metrics.Enabled is set.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *Container) {
		c.metricsRegistry = reg
	}
}

// WithServiceOptions forwards options to every option service.
func WithServiceOptions(opts ...options.ServiceOption) Option {
	return func(c *Container) {
		c.serviceOpts = append(c.serviceOpts, opts...)
	}
}

func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.TTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:      cfg,
		cacheTTL:    cacheTTL,
		broadcaster: options.NewBroadcaster(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")

	c.configureCacheDefaults()
	if c.Config.Metrics.Enabled {
		c.metrics = metrics.New(c.metricsRegistry)
	}
	if err := c.configureRegistry(); err != nil {
		return nil, err
	}
	if err := c.configureExport(); err != nil {
		return nil, err
	}
	c.configureHTTP()
	if err := c.configureCommands(); err != nil {
		return nil, err
	}

	c.logger.Debug("container.configured",
		"store", c.storeName(),
		"cache", c.cacheService != nil,
		"kinds", len(c.registry.Bindings()),
		"export", c.exporter != nil,
		"metrics", c.metrics != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Logging.Enabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: level})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("container.cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRegistry() error {
	serviceOpts := append([]options.ServiceOption{options.WithBroadcaster(c.broadcaster)}, c.serviceOpts...)
	buildOpts := []kinds.Option{
		kinds.WithLoggerProvider(c.loggerProvider),
		kinds.WithServiceOptions(serviceOpts...),
	}
	if c.bunDB != nil {
		buildOpts = append(buildOpts, kinds.WithDB(c.bunDB))
		if c.cacheService != nil {
			buildOpts = append(buildOpts, kinds.WithCache(c.cacheService, c.keySerializer))
		}
	}
	registry, err := kinds.Build(c.Config.Kinds, buildOpts...)
	if err != nil {
		return err
	}
	c.registry = registry
	return nil
}

func (c *Container) configureExport() error {
	if !c.Config.Export.Enabled {
		return nil
	}
	countries := c.registry.Countries()
	if countries == nil {
		return runtimeconfig.ErrExportKindDisabled
	}
	if c.sink == nil {
		sink, err := buildSink(c.Config.Export)
		if err != nil {
			return err
		}
		c.sink = sink
	}
	workerOpts := []export.Option{
		export.WithKey(c.Config.Export.Key),
		export.WithKind(kinds.Country),
		export.WithDebounce(c.Config.Export.Debounce),
		export.WithLogger(logging.ExportLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		workerOpts = append(workerOpts, export.WithObserver(c.metrics.ObserveExport))
	}
	c.exporter = export.NewWorker(countries, c.sink, workerOpts...)
	return nil
}

func buildSink(cfg runtimeconfig.ExportConfig) (export.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Sink)) {
	case string(export.DriverFilesystem):
		return export.NewFileSink(cfg.Directory)
	case string(export.DriverS3):
		return export.NewS3Sink(context.Background(), export.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
		})
	case string(export.DriverMemory):
		return export.NewMemorySink(), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrExportSinkUnknown, cfg.Sink)
	}
}

func (c *Container) configureHTTP() {
	apiOpts := []lookuphttp.APIOption{
		lookuphttp.WithBasePath(c.Config.HTTP.BasePath),
		lookuphttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		apiOpts = append(apiOpts, lookuphttp.WithMiddleware(c.metrics.Instrument))
	}
	c.api = lookuphttp.NewOptionsAPI(c.registry, apiOpts...)
}

func (c *Container) configureCommands() error {
	var exporter exportcmd.Regenerator
	if c.exporter != nil {
		exporter = c.exporter
	}
	exportSet, err := exportcmd.RegisterExportCommands(c.commandRegistry, exporter, c.loggerProvider)
	if err != nil {
		return err
	}
	optionSet, err := optionscmd.RegisterOptionCommands(c.commandRegistry, c.registry, c.loggerProvider)
	if err != nil {
		return err
	}
	c.exportCommands = exportSet
	c.optionCommands = optionSet
	return nil
}

// Start creates tables when configured, inserts seeds, writes an initial
// workbook and starts the export worker.
func (c *Container) Start(ctx context.Context) error {
	if c.bunDB != nil && c.Config.Database.AutoMigrate {
		if err := c.registry.Migrate(ctx); err != nil {
			return fmt.Errorf("lookup: migrate: %w", err)
		}
	}
	seeded, err := c.registry.Seed(ctx)
	if err != nil {
		return fmt.Errorf("lookup: seed: %w", err)
	}
	c.logger.Info("container.seeded", "created", seeded)

	if c.metrics != nil && c.stopWatch == nil {
		watchCtx, cancel := context.WithCancel(ctx)
		if err := c.metrics.Watch(watchCtx, c.broadcaster); err != nil {
			cancel()
			return err
		}
		c.stopWatch = cancel
	}

	if c.exporter == nil {
		return nil
	}
	if _, err := c.exporter.Regenerate(ctx); err != nil {
		c.logger.Warn("container.export.initial_failed", "error", err)
	}
	return c.exporter.Start(ctx, c.broadcaster)
}

// Close stops background work. It is safe to call more than once.
func (c *Container) Close() error {
	if c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
	if c.exporter != nil {
		c.exporter.Stop()
	}
	return nil
}

// RegisterRoutes mounts the options API on mux, and GET /metrics when
// metrics are enabled.
func (c *Container) RegisterRoutes(mux *http.ServeMux) error {
	if err := c.api.Register(mux); err != nil {
		return err
	}
	if c.metrics != nil {
		mux.Handle("GET /metrics", c.metrics.Handler())
	}
	return nil
}

func (c *Container) storeName() string {
	if c.bunDB == nil {
		return "memory"
	}
	return c.bunDB.Dialect().Name().String()
}

func (c *Container) Registry() *kinds.Registry { return c.registry }

func (c *Container) Broadcaster() *options.Broadcaster { return c.broadcaster }

func (c *Container) Exporter() *export.Worker { return c.exporter }

func (c *Container) Sink() export.Sink { return c.sink }

func (c *Container) API() *lookuphttp.OptionsAPI { return c.api }

func (c *Container) Metrics() *metrics.Metrics { return c.metrics }

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) ExportCommands() *exportcmd.HandlerSet { return c.exportCommands }

func (c *Container) OptionCommands() *optionscmd.HandlerSet { return c.optionCommands }
