package history

import "embed"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded goose migrations for the
// run_summaries table, for wiring into database.NewMigrator.
func MigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationsDir is the directory argument NewMigrator expects.
const MigrationsDir = "migrations"
