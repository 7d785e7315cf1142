package bootstrap

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-lookup"
	"github.com/goliatone/go-lookup/internal/di"
	"github.com/goliatone/go-lookup/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Options captures what the lookupd subcommands share.
type Options struct {
	Driver         string
	DSN            string
	Cache          bool
	LogLevel       string
	LogProvider    string
	BasePath       string
	ExportSink     string
	ExportDir      string
	ExportBucket   string
	ExportRegion   string
	ExportEndpoint string
	ExportDebounce time.Duration
	DisableExport  bool
	Metrics        bool
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the lookup module and the database it was opened with.
type Module struct {
	Module *lookup.Module
	DB     *bun.DB
}

// Close stops the module and closes the database.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	err := m.Module.Close()
	if m.DB != nil {
		if cerr := m.DB.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Config maps opts onto a lookup.Config.
func Config(opts Options) lookup.Config {
	cfg := lookup.DefaultConfig()
	cfg.Database.Driver = firstNonEmpty(opts.Driver, cfg.Database.Driver)
	cfg.Database.DSN = strings.TrimSpace(opts.DSN)
	cfg.Cache.Enabled = opts.Cache
	cfg.Logging.Provider = firstNonEmpty(opts.LogProvider, cfg.Logging.Provider)
	cfg.Logging.Level = firstNonEmpty(opts.LogLevel, cfg.Logging.Level)
	cfg.HTTP.BasePath = firstNonEmpty(opts.BasePath, cfg.HTTP.BasePath)

	cfg.Metrics.Enabled = opts.Metrics

	cfg.Export.Enabled = !opts.DisableExport
	cfg.Export.Sink = firstNonEmpty(opts.ExportSink, cfg.Export.Sink)
	cfg.Export.Directory = firstNonEmpty(opts.ExportDir, cfg.Export.Directory)
	cfg.Export.S3.Bucket = strings.TrimSpace(opts.ExportBucket)
	cfg.Export.S3.Region = strings.TrimSpace(opts.ExportRegion)
	if endpoint := strings.TrimSpace(opts.ExportEndpoint); endpoint != "" {
		cfg.Export.S3.Endpoint = endpoint
		cfg.Export.S3.PathStyle = true
	}
	if opts.ExportDebounce > 0 {
		cfg.Export.Debounce = opts.ExportDebounce
	}
	return cfg
}

// OpenDB returns nil for the memory driver.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return nil, nil
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", lookup.ErrDatabaseDriverUnknown, driver)
	}
}

// BuildModule opens the database and constructs the lookup module.
func BuildModule(opts Options) (*Module, error) {
	cfg := Config(opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := OpenDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if db != nil {
		diOpts = append(diOpts, di.WithBunDB(db))
	}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := lookup.New(cfg, diOpts...)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("initialise lookup module: %w", err)
	}
	return &Module{Module: module, DB: db}, nil
}

// EnvOr returns the environment value for key, or fallback when unset.
func EnvOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
