package migration

import "time"

// Migration represents a single schema change.
type Migration struct {
	Version     string // numeric version, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises the applied and pending migrations.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}
