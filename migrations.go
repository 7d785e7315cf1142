package lookup

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded SQL migrations for hosts that manage
// their own schema instead of setting Database.AutoMigrate.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
