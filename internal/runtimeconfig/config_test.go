package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_DatabaseRules(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Database.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDatabaseDriverUnknown) {
		t.Fatalf("expected ErrDatabaseDriverUnknown, got %v", err)
	}

	cfg.Database.Driver = "Postgres"
	cfg.Database.DSN = " "
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDatabaseDSNRequired) {
		t.Fatalf("expected ErrDatabaseDSNRequired, got %v", err)
	}

	cfg.Database.DSN = "postgres://localhost/lookups"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected postgres config valid, got %v", err)
	}
}

func TestConfigValidate_CacheRequiresDatabase(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheRequiresDatabase) {
		t.Fatalf("expected ErrCacheRequiresDatabase, got %v", err)
	}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:lookups.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected cache over sqlite valid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}

	cfg.Logging.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled logging to skip provider checks, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevelAndFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_ExportSinks(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Export.Sink = "ftp"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrExportSinkUnknown) {
		t.Fatalf("expected ErrExportSinkUnknown, got %v", err)
	}

	cfg.Export.Sink = "s3"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrExportBucketRequired) {
		t.Fatalf("expected ErrExportBucketRequired, got %v", err)
	}
	cfg.Export.S3.Bucket = "lookups"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected s3 export valid, got %v", err)
	}

	cfg.Export.Sink = "fs"
	cfg.Export.Directory = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrExportDirRequired) {
		t.Fatalf("expected ErrExportDirRequired, got %v", err)
	}

	cfg.Export.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled export to skip checks, got %v", err)
	}
}

func TestConfigValidate_ExportNeedsCountryKind(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Kinds.Overrides = map[string]kinds.Override{kinds.Country: {Disabled: true}}
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrExportKindDisabled) {
		t.Fatalf("expected ErrExportKindDisabled, got %v", err)
	}
}

func TestConfigValidate_PropagatesKindErrors(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Kinds.Overrides = map[string]kinds.Override{"planets": {}}
	if err := cfg.Validate(); !errors.Is(err, kinds.ErrUnknownKind) {
		t.Fatalf("expected kinds.ErrUnknownKind, got %v", err)
	}
}

func TestConfigValidate_HTTPBasePath(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.HTTP.BasePath = "api"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrHTTPBasePathInvalid) {
		t.Fatalf("expected ErrHTTPBasePathInvalid, got %v", err)
	}
}
