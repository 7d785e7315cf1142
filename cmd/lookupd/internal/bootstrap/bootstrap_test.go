package bootstrap

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-lookup"
)

func TestConfigMapsOptions(t *testing.T) {
	cfg := Config(Options{
		Driver:         "sqlite",
		DSN:            " file:test.db ",
		ExportSink:     "s3",
		ExportBucket:   "exports",
		ExportEndpoint: "http://localhost:9000",
		ExportDebounce: time.Second,
	})
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "file:test.db" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Export.Sink != "s3" || cfg.Export.S3.Bucket != "exports" || !cfg.Export.S3.PathStyle {
		t.Fatalf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Export.Debounce != time.Second {
		t.Fatalf("expected debounce override, got %s", cfg.Export.Debounce)
	}
	if cfg.HTTP.BasePath != "/api/lookups" {
		t.Fatalf("expected default base path, got %q", cfg.HTTP.BasePath)
	}
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB("memory", "")
	if err != nil || db != nil {
		t.Fatalf("expected no database for memory driver, got %v (%v)", db, err)
	}

	db, err = OpenDB("sqlite", "file:bootstrap_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if name := db.Dialect().Name().String(); name != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %s", name)
	}

	if _, err := OpenDB("oracle", "x"); !errors.Is(err, lookup.ErrDatabaseDriverUnknown) {
		t.Fatalf("expected ErrDatabaseDriverUnknown, got %v", err)
	}
}

func TestBuildModuleWithSQLite(t *testing.T) {
	module, err := BuildModule(Options{
		Driver:        "sqlite",
		DSN:           "file:bootstrap_build?mode=memory&cache=shared",
		LogProvider:   "console",
		LogLevel:      "error",
		DisableExport: true,
	})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	if module.DB == nil {
		t.Fatal("expected a bun database")
	}
	if len(module.Module.Kinds()) != 7 {
		t.Fatalf("expected every kind, got %d", len(module.Module.Kinds()))
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("LOOKUP_TEST_VALUE", "  ")
	if got := EnvOr("LOOKUP_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	t.Setenv("LOOKUP_TEST_VALUE", "set")
	if got := EnvOr("LOOKUP_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected env value, got %q", got)
	}
}
