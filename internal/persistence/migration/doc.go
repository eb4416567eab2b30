// Package migration applies versioned SQL schema changes to the booking store.
//
// Migration files are embedded per dialect under sql/<dialect>/ and follow the
// naming convention {version}_{description}.sql (e.g. "001_create_meeting_rooms.sql").
// Each file runs in its own transaction and is recorded in a schema_migrations
// table so it is never applied twice.
//
// Example usage:
//
//	manager := migration.NewManager(db, migration.SQLite, logger)
//	if err := manager.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
