package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-lookup/internal/kinds"
)

var (
	ErrDatabaseDriverUnknown   = errors.New("lookup config: database driver is invalid")
	ErrDatabaseDSNRequired     = errors.New("lookup config: database dsn is required")
	ErrCacheRequiresDatabase   = errors.New("lookup config: cache requires a sql database")
	ErrCacheTTLInvalid         = errors.New("lookup config: cache ttl must be zero or positive")
	ErrLoggingProviderRequired = errors.New("lookup config: logging provider is required when logging is enabled")
	ErrLoggingProviderUnknown  = errors.New("lookup config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("lookup config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("lookup config: logging format is invalid")
	ErrExportSinkUnknown       = errors.New("lookup config: export sink is invalid")
	ErrExportDirRequired       = errors.New("lookup config: export directory is required for the fs sink")
	ErrExportBucketRequired    = errors.New("lookup config: export bucket is required for the s3 sink")
	ErrExportKeyRequired       = errors.New("lookup config: export key is required")
	ErrExportDebounceInvalid   = errors.New("lookup config: export debounce must be zero or positive")
	ErrExportKindDisabled      = errors.New("lookup config: export requires the country kind")
	ErrHTTPBasePathInvalid     = errors.New("lookup config: http base path must start with /")
)

// Config aggregates runtime options for the lookup module.
type Config struct {
	Database DatabaseConfig
	Cache    CacheConfig
	Logging  LoggingConfig
	HTTP     HTTPConfig
	Export   ExportConfig
	Metrics  MetricsConfig
	Kinds    kinds.Config
}

// DatabaseConfig selects the record store. "memory" keeps everything in
// process; "sqlite" and "postgres" go through bun.
type DatabaseConfig struct {
	Driver string
	DSN    string
	// AutoMigrate creates missing option tables on start.
	AutoMigrate bool
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type LoggingConfig struct {
	Enabled   bool
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

type HTTPConfig struct {
	Address  string
	BasePath string
}

// MetricsConfig enables the Prometheus collectors for mutations, exports and
// API requests.
type MetricsConfig struct {
	Enabled bool
}

// ExportConfig controls the country workbook export.
type ExportConfig struct {
	Enabled   bool
	Sink      string
	Directory string
	Key       string
	Debounce  time.Duration
	S3        S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// DefaultConfig returns in-memory defaults suitable for tests and local runs.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:      "memory",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{
			Enabled:  true,
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Address:  ":8080",
			BasePath: "/api/lookups",
		},
		Export: ExportConfig{
			Enabled:   true,
			Sink:      "fs",
			Directory: "exports",
			Key:       "countries.xlsx",
			Debounce:  500 * time.Millisecond,
		},
		Kinds: kinds.Config{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	driver := normalize(cfg.Database.Driver)
	switch driver {
	case "memory", "":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrDatabaseDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, driver)
	}

	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Cache.Enabled && (driver == "memory" || driver == "") {
		return ErrCacheRequiresDatabase
	}

	if cfg.Logging.Enabled {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}

	if base := strings.TrimSpace(cfg.HTTP.BasePath); base != "" && !strings.HasPrefix(base, "/") {
		return fmt.Errorf("%w: %q", ErrHTTPBasePathInvalid, base)
	}

	if err := cfg.Kinds.Validate(); err != nil {
		return err
	}

	if cfg.Export.Enabled {
		if err := cfg.validateExport(); err != nil {
			return err
		}
	}
	return nil
}

func (cfg Config) validateExport() error {
	if cfg.Kinds.Overrides[kinds.Country].Disabled {
		return ErrExportKindDisabled
	}
	if strings.TrimSpace(cfg.Export.Key) == "" {
		return ErrExportKeyRequired
	}
	if cfg.Export.Debounce < 0 {
		return ErrExportDebounceInvalid
	}
	switch sink := normalize(cfg.Export.Sink); sink {
	case "fs":
		if strings.TrimSpace(cfg.Export.Directory) == "" {
			return ErrExportDirRequired
		}
	case "s3":
		if strings.TrimSpace(cfg.Export.S3.Bucket) == "" {
			return ErrExportBucketRequired
		}
	case "memory":
	default:
		return fmt.Errorf("%w: %s", ErrExportSinkUnknown, sink)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
