package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(nil); err == nil {
		t.Fatal("expected an error without a command")
	}
	if err := run([]string{"bogus"}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestRunExportWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{"export",
		"-driver", "sqlite",
		"-dsn", "file:" + filepath.Join(dir, "lookup.db"),
		"-log-provider", "console",
		"-log-level", "error",
		"-export-sink", "fs",
		"-export-dir", dir,
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "countries.xlsx")); err != nil {
		t.Fatalf("expected workbook on disk: %v", err)
	}
}

func TestRunPurgeRequiresKnownKind(t *testing.T) {
	dir := t.TempDir()
	args := []string{"purge",
		"-driver", "sqlite",
		"-dsn", "file:" + filepath.Join(dir, "lookup.db"),
		"-log-provider", "console",
		"-log-level", "error",
		"-kind", "currency",
	}
	if err := run(args); err == nil {
		t.Fatal("expected purge of an unknown kind to fail")
	}
}

func TestRunMigrateCreatesTables(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{"migrate",
		"-driver", "sqlite",
		"-dsn", "file:" + filepath.Join(dir, "lookup.db"),
		"-log-provider", "console",
		"-log-level", "error",
	})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lookup.db")); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}
