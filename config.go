package lookup

import (
	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/runtimeconfig"
)

var (
	ErrDatabaseDriverUnknown   = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired     = runtimeconfig.ErrDatabaseDSNRequired
	ErrCacheRequiresDatabase   = runtimeconfig.ErrCacheRequiresDatabase
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrExportSinkUnknown       = runtimeconfig.ErrExportSinkUnknown
	ErrExportDirRequired       = runtimeconfig.ErrExportDirRequired
	ErrExportBucketRequired    = runtimeconfig.ErrExportBucketRequired
	ErrExportKeyRequired       = runtimeconfig.ErrExportKeyRequired
	ErrExportDebounceInvalid   = runtimeconfig.ErrExportDebounceInvalid
	ErrExportKindDisabled      = runtimeconfig.ErrExportKindDisabled
	ErrHTTPBasePathInvalid     = runtimeconfig.ErrHTTPBasePathInvalid
	ErrUnknownKind             = kinds.ErrUnknownKind
)

type (
	Config         = runtimeconfig.Config
	DatabaseConfig = runtimeconfig.DatabaseConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	ExportConfig   = runtimeconfig.ExportConfig
	S3Config       = runtimeconfig.S3Config
	MetricsConfig  = runtimeconfig.MetricsConfig
	KindsConfig    = kinds.Config
	KindOverride   = kinds.Override
	KindSeed       = kinds.Seed
)

// DefaultConfig returns the default runtime configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
