package migration

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sql
var embedded embed.FS

// Dialect describes the SQL differences the migration runner cares about.
type Dialect struct {
	Name string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder func(n int) string
	// VersionTableDDL creates schema_migrations.
	VersionTableDDL string
}

var (
	// SQLite is the dialect for modernc.org/sqlite.
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		VersionTableDDL: `CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)`,
	}
	// Postgres is the dialect for github.com/lib/pq.
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		VersionTableDDL: `CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms BIGINT
		)`,
	}
)

// Files returns the embedded migration files for the dialect.
func (d Dialect) Files() (fs.FS, error) {
	sub, err := fs.Sub(embedded, "sql/"+d.Name)
	if err != nil {
		return nil, fmt.Errorf("migration: no files for dialect %s: %w", d.Name, err)
	}
	return sub, nil
}
