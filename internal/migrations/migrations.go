package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// DefaultDir is where the module embeds its SQL files.
const DefaultDir = "data/sql/migrations"

var ErrDriverUnsupported = errors.New("migrations: driver is not supported")

// Result reports the schema version after Up.
type Result struct {
	Version uint
	Changed bool
}

// Up applies every pending migration found in dir of fsys to db. driver is
// "sqlite" or "postgres".
func Up(db *sql.DB, driver string, fsys fs.FS, dir string) (*Result, error) {
	if db == nil {
		return nil, errors.New("migrations: db is nil")
	}
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}

	target, name, err := databaseDriver(db, driver)
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: open source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, name, target)
	if err != nil {
		return nil, fmt.Errorf("migrations: create migrate instance: %w", err)
	}

	result := &Result{Changed: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("migrations: up: %w", err)
		}
		result.Changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("migrations: version: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("migrations: version %d is dirty", version)
	}
	result.Version = version
	return result, nil
}

func databaseDriver(db *sql.DB, driver string) (database.Driver, string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		target, err := sqlite3.WithInstance(db, &sqlite3.Config{})
		if err != nil {
			return nil, "", fmt.Errorf("migrations: sqlite driver: %w", err)
		}
		return target, "sqlite3", nil
	case "postgres":
		target, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
		if err != nil {
			return nil, "", fmt.Errorf("migrations: postgres driver: %w", err)
		}
		return target, "pgx5", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrDriverUnsupported, driver)
	}
}
