package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

var memoryDBSeq atomic.Uint64

// NewSQLiteMemoryDB opens a private shared-cache in-memory sqlite database.
// Each call gets its own database so tests do not see each other's tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("lookup_%d", memoryDBSeq.Add(1))
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
}

// NewBunDB wraps NewSQLiteMemoryDB in a bun.DB and closes it when t ends.
func NewBunDB(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}
